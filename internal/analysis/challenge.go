package analysis

type ChallengeType string

const (
	ChallengeNutrition     ChallengeType = "nutrition"
	ChallengeLoggingStreak ChallengeType = "logging_streak"
	ChallengeBalancedMeals ChallengeType = "balanced_meals"
)

func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeNutrition, ChallengeLoggingStreak, ChallengeBalancedMeals:
		return true
	}
	return false
}

// NutritionChallengeMetrics 营养类挑战从周期趋势中取指标
func NutritionChallengeMetrics(t PeriodTrends) map[string]float64 {
	metrics := map[string]float64{
		"nutrient_goals_met":        t.NutrientGoalsMet,
		"meal_logging_consistency":  t.LoggingConsistency,
		"balanced_meals_percentage": t.BalancedMealsPercentage,
		"calories_adherence":        0,
	}
	if t.CalorieAdherence != nil {
		metrics["calories_adherence"] = *t.CalorieAdherence
	}
	return metrics
}

func BalancedMealsChallengeMetrics(t PeriodTrends) map[string]float64 {
	return map[string]float64{
		"balanced_meals_percentage": t.BalancedMealsPercentage,
		"logged_days":               float64(t.LoggedDays),
	}
}

func StreakChallengeMetrics(s StreakSummary, totalLogs int) map[string]float64 {
	return map[string]float64{
		"current_streak":    float64(s.CurrentStreak),
		"longest_streak":    float64(s.LongestStreak),
		"total_logs":        float64(totalLogs),
		"consistency_score": float64(s.ConsistencyScore),
	}
}

// ChallengeCompletion 各项指标完成度的平均值，最终限制在 [0,100]。目标值不为正的指标不参与计算。
func ChallengeCompletion(metrics, targets map[string]float64) float64 {
	scores := make([]float64, 0, len(targets))
	for key, target := range targets {
		if target <= 0 {
			continue
		}
		scores = append(scores, quantity(metrics[key])/target*100)
	}
	if len(scores) == 0 {
		return 0
	}
	return ClampPercent(mean(scores))
}
