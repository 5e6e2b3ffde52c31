package analysis

import "testing"

func TestChallengeCompletion(t *testing.T) {
	tests := []struct {
		name    string
		metrics map[string]float64
		targets map[string]float64
		want    float64
	}{
		{"half of each", map[string]float64{"a": 5, "b": 10}, map[string]float64{"a": 10, "b": 20}, 50},
		{"mean before clamp", map[string]float64{"a": 15, "b": 0}, map[string]float64{"a": 10, "b": 10}, 75},
		{"clamped", map[string]float64{"a": 30}, map[string]float64{"a": 10}, 100},
		{"missing metric counts as zero", map[string]float64{}, map[string]float64{"a": 10}, 0},
		{"non-positive targets ignored", map[string]float64{"a": 5}, map[string]float64{"a": 10, "b": 0}, 50},
		{"no targets", map[string]float64{"a": 5}, nil, 0},
	}
	for _, tt := range tests {
		if got := ChallengeCompletion(tt.metrics, tt.targets); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestChallengeMetricBuilders(t *testing.T) {
	adherence := 80.0
	trends := PeriodTrends{
		LoggedDays:              6,
		NutrientGoalsMet:        50,
		LoggingConsistency:      85,
		BalancedMealsPercentage: 40,
		CalorieAdherence:        &adherence,
	}

	nutrition := NutritionChallengeMetrics(trends)
	if nutrition["calories_adherence"] != 80 || nutrition["meal_logging_consistency"] != 85 {
		t.Fatalf("nutrition metrics %v", nutrition)
	}
	trends.CalorieAdherence = nil
	if NutritionChallengeMetrics(trends)["calories_adherence"] != 0 {
		t.Fatalf("missing adherence should be 0")
	}

	balanced := BalancedMealsChallengeMetrics(trends)
	if balanced["balanced_meals_percentage"] != 40 || balanced["logged_days"] != 6 {
		t.Fatalf("balanced metrics %v", balanced)
	}

	streak := StreakChallengeMetrics(StreakSummary{CurrentStreak: 4, LongestStreak: 9, ConsistencyScore: 70}, 21)
	if streak["current_streak"] != 4 || streak["total_logs"] != 21 {
		t.Fatalf("streak metrics %v", streak)
	}

	if !ChallengeLoggingStreak.Valid() || ChallengeType("marathon").Valid() {
		t.Fatalf("unexpected Valid results")
	}
}
