package analysis

import "time"

// NutrientTarget 用户对某种营养素的每日目标
type NutrientTarget struct {
	Nutrient    string  `json:"nutrient"`
	DailyTarget float64 `json:"dailyTarget"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
}

type NutrientGoalStatus string

const (
	NutrientAchieved       NutrientGoalStatus = "achieved"
	NutrientOnTrack        NutrientGoalStatus = "on_track"
	NutrientNeedsAttention NutrientGoalStatus = "needs_attention"
	NutrientOffTrack       NutrientGoalStatus = "off_track"
)

type NutrientGoalProgress struct {
	Nutrient   string             `json:"nutrient"`
	Unit       string             `json:"unit"`
	Target     float64            `json:"target"`
	Achieved   float64            `json:"achieved"`
	Percentage float64            `json:"percentage"`
	Status     NutrientGoalStatus `json:"status"`
}

type NutrientDeficit struct {
	Nutrient   string  `json:"nutrient"`
	Actual     float64 `json:"actual"`
	Target     float64 `json:"target"`
	Deficit    float64 `json:"deficit"`
	Percentage float64 `json:"percentage"`
}

// DailyRecord 单日分析结果
type DailyRecord struct {
	Date          time.Time              `json:"date"`
	EntryCount    int                    `json:"entryCount"`
	Totals        DailyTotals            `json:"basicTotals"`
	MealTiming    MealTiming             `json:"mealTiming"`
	MacroBalance  *MacroBalance          `json:"macroBalance,omitempty"`
	GoalsProgress []NutrientGoalProgress `json:"goalsProgress"`
	Deficits      []NutrientDeficit      `json:"nutrientDeficits"`
}

func targetPercentage(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return ClampPercent(actual / target * 100)
}

func nutrientStatus(percentage float64) NutrientGoalStatus {
	switch {
	case percentage >= 90:
		return NutrientAchieved
	case percentage >= 70:
		return NutrientOnTrack
	case percentage >= 50:
		return NutrientNeedsAttention
	}
	return NutrientOffTrack
}

// CheckNutrientGoals 逐项对比当日摄入与目标
func CheckNutrientGoals(totals DailyTotals, targets []NutrientTarget) []NutrientGoalProgress {
	progress := make([]NutrientGoalProgress, 0, len(targets))
	for _, t := range targets {
		achieved := totals.Amount(t.Nutrient)
		pct := targetPercentage(achieved, t.DailyTarget)
		progress = append(progress, NutrientGoalProgress{
			Nutrient:   t.Nutrient,
			Unit:       t.Unit,
			Target:     t.DailyTarget,
			Achieved:   achieved,
			Percentage: pct,
			Status:     nutrientStatus(pct),
		})
	}
	return progress
}

// NutrientDeficits 只列出未达标的营养素
func NutrientDeficits(totals DailyTotals, targets []NutrientTarget) []NutrientDeficit {
	deficits := []NutrientDeficit{}
	for _, t := range targets {
		if t.DailyTarget <= 0 {
			continue
		}
		actual := totals.Amount(t.Nutrient)
		if actual >= t.DailyTarget {
			continue
		}
		deficits = append(deficits, NutrientDeficit{
			Nutrient:   t.Nutrient,
			Actual:     actual,
			Target:     t.DailyTarget,
			Deficit:    t.DailyTarget - actual,
			Percentage: targetPercentage(actual, t.DailyTarget),
		})
	}
	return deficits
}

// BuildDailyRecord 组合汇总、进餐时间和营养目标检查
func BuildDailyRecord(date time.Time, entries []FoodLogEntry, targets []NutrientTarget, policy MealWindowPolicy) DailyRecord {
	totals := AggregateDay(entries)
	return DailyRecord{
		Date:          DayStart(date),
		EntryCount:    len(entries),
		Totals:        totals,
		MealTiming:    AnalyzeMealTiming(entries, policy),
		MacroBalance:  AssessMacroBalance(totals.Macronutrients),
		GoalsProgress: CheckNutrientGoals(totals, targets),
		Deficits:      NutrientDeficits(totals, targets),
	}
}
