package analysis

import (
	"sort"
	"time"
)

// MealWindow 左闭右开的小时区间 [From, To)
type MealWindow struct {
	From int
	To   int
	Meal MealType
}

// MealWindowPolicy 把 24 小时划分给各个餐次，未命中任何区间的时刻归入 Default
type MealWindowPolicy struct {
	Name    string
	Windows []MealWindow
	Default MealType
}

// AnalysisMealWindows 饮食时间分析使用的划分
var AnalysisMealWindows = MealWindowPolicy{
	Name: "analysis",
	Windows: []MealWindow{
		{From: 4, To: 11, Meal: Breakfast},
		{From: 11, To: 16, Meal: Lunch},
		{From: 16, To: 20, Meal: Dinner},
	},
	Default: Snack,
}

// ReminderMealWindows 提醒只覆盖三顿正餐，其余时刻归入 Snack，不发提醒
var ReminderMealWindows = MealWindowPolicy{
	Name: "reminder",
	Windows: []MealWindow{
		{From: 6, To: 10, Meal: Breakfast},
		{From: 11, To: 14, Meal: Lunch},
		{From: 17, To: 20, Meal: Dinner},
	},
	Default: Snack,
}

// SuggestionMealWindows 记录未填写餐次时按提交时刻推荐
var SuggestionMealWindows = MealWindowPolicy{
	Name: "suggestion",
	Windows: []MealWindow{
		{From: 5, To: 10, Meal: Breakfast},
		{From: 10, To: 15, Meal: Lunch},
		{From: 15, To: 18, Meal: Snack},
		{From: 18, To: 22, Meal: Dinner},
	},
	Default: Snack,
}

func (p MealWindowPolicy) Classify(hour int) MealType {
	for _, w := range p.Windows {
		if hour >= w.From && hour < w.To {
			return w.Meal
		}
	}
	return p.Default
}

func (p MealWindowPolicy) ClassifyTime(t time.Time) MealType {
	return p.Classify(t.Hour())
}

type MealDistribution struct {
	Breakfast []FoodLogEntry `json:"breakfast"`
	Lunch     []FoodLogEntry `json:"lunch"`
	Dinner    []FoodLogEntry `json:"dinner"`
	Snack     []FoodLogEntry `json:"snack"`
}

func newMealDistribution() MealDistribution {
	return MealDistribution{
		Breakfast: []FoodLogEntry{},
		Lunch:     []FoodLogEntry{},
		Dinner:    []FoodLogEntry{},
		Snack:     []FoodLogEntry{},
	}
}

func (d *MealDistribution) add(m MealType, e FoodLogEntry) {
	switch m {
	case Breakfast:
		d.Breakfast = append(d.Breakfast, e)
	case Lunch:
		d.Lunch = append(d.Lunch, e)
	case Dinner:
		d.Dinner = append(d.Dinner, e)
	default:
		d.Snack = append(d.Snack, e)
	}
}

func (d MealDistribution) Bucket(m MealType) []FoodLogEntry {
	switch m {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return d.Snack
}

func (d MealDistribution) Has(m MealType) bool {
	return len(d.Bucket(m)) > 0
}

// All 按 早-中-晚-加餐 的顺序返回全部记录
func (d MealDistribution) All() []FoodLogEntry {
	all := make([]FoodLogEntry, 0, len(d.Breakfast)+len(d.Lunch)+len(d.Dinner)+len(d.Snack))
	for _, m := range MealTypes {
		all = append(all, d.Bucket(m)...)
	}
	return all
}

func (d MealDistribution) Counts() map[MealType]int {
	counts := make(map[MealType]int, len(MealTypes))
	for _, m := range MealTypes {
		counts[m] = len(d.Bucket(m))
	}
	return counts
}

// ClassifyByTime 按记录创建时刻的小时归类
func ClassifyByTime(entries []FoodLogEntry, policy MealWindowPolicy) MealDistribution {
	d := newMealDistribution()
	for _, e := range entries {
		d.add(policy.ClassifyTime(e.CreatedAt), e)
	}
	return d
}

// MealTiming 单日进餐时间分析
type MealTiming struct {
	Distribution      MealDistribution `json:"mealDistribution"`
	FirstMealAt       *time.Time       `json:"firstMealAt,omitempty"`
	LastMealAt        *time.Time       `json:"lastMealAt,omitempty"`
	EatingWindowHours float64          `json:"eatingWindowHours"`
	LongestGapHours   float64          `json:"longestGapHours"`
	SkippedMeals      []MealType       `json:"skippedMeals"`
}

func AnalyzeMealTiming(entries []FoodLogEntry, policy MealWindowPolicy) MealTiming {
	timing := MealTiming{
		Distribution: ClassifyByTime(entries, policy),
		SkippedMeals: []MealType{},
	}

	for _, m := range MainMeals {
		if !timing.Distribution.Has(m) {
			timing.SkippedMeals = append(timing.SkippedMeals, m)
		}
	}

	if len(entries) == 0 {
		return timing
	}

	times := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		times = append(times, e.CreatedAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	first, last := times[0], times[len(times)-1]
	timing.FirstMealAt = &first
	timing.LastMealAt = &last
	timing.EatingWindowHours = last.Sub(first).Hours()

	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]).Hours(); gap > timing.LongestGapHours {
			timing.LongestGapHours = gap
		}
	}

	return timing
}
