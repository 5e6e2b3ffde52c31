package analysis

import (
	"math"
	"sort"
	"strings"
	"time"
)

const calorieAdherenceTolerance = 0.10

type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TrendStat struct {
	SlopePerDay float64 `json:"slopePerDay"`
	Direction   string  `json:"direction"`
}

// PeriodTrends 多日汇总后的趋势数据，只包含结构化数值，不包含文字解读
type PeriodTrends struct {
	Days                    int              `json:"days"`
	LoggedDays              int              `json:"loggedDays"`
	TotalEntries            int              `json:"totalEntries"`
	CalorieSeries           []SeriesPoint    `json:"calorieSeries"`
	AverageCalories         float64          `json:"averageCalories"`
	CalorieTrend            TrendStat        `json:"calorieTrend"`
	HighestCalorieDay       *SeriesPoint     `json:"highestCalorieDay,omitempty"`
	LowestCalorieDay        *SeriesPoint     `json:"lowestCalorieDay,omitempty"`
	AverageMacronutrients   Macronutrients   `json:"averageMacronutrients"`
	DeficiencyFrequency     map[string]int   `json:"deficiencyFrequency"`
	MealTypeFrequency       map[MealType]int `json:"mealTypeFrequency"`
	NutrientGoalsMet        float64          `json:"nutrientGoalsMet"`
	CalorieAdherence        *float64         `json:"calorieAdherence,omitempty"`
	BalancedMealsPercentage float64          `json:"balancedMealsPercentage"`
	LoggingConsistency      float64          `json:"loggingConsistency"`
}

// SummarizePeriod 要求 records 已按日期升序排列。
// 平均值只统计有记录的日期，避免补零的空白日拉低结果。
func SummarizePeriod(records []DailyRecord, targets []NutrientTarget) PeriodTrends {
	trends := PeriodTrends{
		Days:                len(records),
		CalorieSeries:       make([]SeriesPoint, 0, len(records)),
		DeficiencyFrequency: map[string]int{},
		MealTypeFrequency:   map[MealType]int{},
	}
	for _, m := range MealTypes {
		trends.MealTypeFrequency[m] = 0
	}

	calorieTarget := 0.0
	for _, t := range targets {
		if strings.EqualFold(t.Nutrient, "calories") && t.DailyTarget > 0 {
			calorieTarget = t.DailyTarget
		}
	}

	var (
		loggedCalories []float64
		macros         Macronutrients
		goalDays       int
		adherentDays   int
		mealsAssessed  int
		balancedMeals  int
	)

	for _, r := range records {
		point := SeriesPoint{Date: r.Date, Value: r.Totals.Calories}
		trends.CalorieSeries = append(trends.CalorieSeries, point)
		trends.TotalEntries += r.EntryCount

		for _, d := range r.Deficits {
			trends.DeficiencyFrequency[d.Nutrient]++
		}
		for m, n := range r.MealTiming.Distribution.Counts() {
			trends.MealTypeFrequency[m] += n
		}

		if r.EntryCount == 0 {
			continue
		}

		trends.LoggedDays++
		loggedCalories = append(loggedCalories, r.Totals.Calories)
		macros.Proteins += r.Totals.Macronutrients.Proteins
		macros.Carbs += r.Totals.Macronutrients.Carbs
		macros.Fats += r.Totals.Macronutrients.Fats

		if trends.HighestCalorieDay == nil || point.Value > trends.HighestCalorieDay.Value {
			p := point
			trends.HighestCalorieDay = &p
		}
		if trends.LowestCalorieDay == nil || point.Value < trends.LowestCalorieDay.Value {
			p := point
			trends.LowestCalorieDay = &p
		}

		if len(r.GoalsProgress) > 0 && allAchieved(r.GoalsProgress) {
			goalDays++
		}
		if calorieTarget > 0 && math.Abs(r.Totals.Calories-calorieTarget) <= calorieTarget*calorieAdherenceTolerance {
			adherentDays++
		}

		for _, e := range r.MealTiming.Distribution.All() {
			b := AssessMacroBalance(e.Macronutrients)
			if b == nil {
				continue
			}
			mealsAssessed++
			if b.Balanced {
				balancedMeals++
			}
		}
	}

	if trends.Days > 0 {
		trends.LoggingConsistency = ClampPercent(float64(trends.LoggedDays) / float64(trends.Days) * 100)
	}

	if trends.LoggedDays > 0 {
		n := float64(trends.LoggedDays)
		trends.AverageCalories = mean(loggedCalories)
		trends.AverageMacronutrients = Macronutrients{
			Proteins: macros.Proteins / n,
			Carbs:    macros.Carbs / n,
			Fats:     macros.Fats / n,
		}
		if len(targets) > 0 {
			trends.NutrientGoalsMet = ClampPercent(float64(goalDays) / n * 100)
		}
		if calorieTarget > 0 {
			adherence := ClampPercent(float64(adherentDays) / n * 100)
			trends.CalorieAdherence = &adherence
		}
	}
	if mealsAssessed > 0 {
		trends.BalancedMealsPercentage = ClampPercent(float64(balancedMeals) / float64(mealsAssessed) * 100)
	}

	trends.CalorieTrend = trendFromValues(loggedCalories)

	return trends
}

func allAchieved(progress []NutrientGoalProgress) bool {
	for _, p := range progress {
		if p.Status != NutrientAchieved {
			return false
		}
	}
	return true
}

// TopDeficiencies 按出现天数降序返回最常见的缺乏营养素
func (t PeriodTrends) TopDeficiencies(limit int) []string {
	names := make([]string, 0, len(t.DeficiencyFrequency))
	for n := range t.DeficiencyFrequency {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := t.DeficiencyFrequency[names[i]], t.DeficiencyFrequency[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}

func trendFromValues(values []float64) TrendStat {
	slope := linearRegressionSlope(values)
	direction := "flat"
	if slope >= 0.5 {
		direction = "up"
	} else if slope <= -0.5 {
		direction = "down"
	}
	return TrendStat{SlopePerDay: slope, Direction: direction}
}

func linearRegressionSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}
