package analysis

// AggregateDay 汇总一天内的饮食记录：热量、三大营养素按字段求和，微量营养素按名称逐项累加。
// 缺失值按 0 计，空输入得到全零结果。
func AggregateDay(entries []FoodLogEntry) DailyTotals {
	totals := DailyTotals{Micronutrients: make(map[string]float64)}

	for _, e := range entries {
		totals.Calories += quantity(e.Calories)
		totals.Macronutrients.Proteins += quantity(e.Macronutrients.Proteins)
		totals.Macronutrients.Carbs += quantity(e.Macronutrients.Carbs)
		totals.Macronutrients.Fats += quantity(e.Macronutrients.Fats)

		for name, amount := range e.Micronutrients {
			totals.Micronutrients[name] += quantity(amount)
		}
	}

	return totals
}

// MacroBalance 三大营养素供能比评估
type MacroBalance struct {
	ProteinRatio float64 `json:"proteinRatio"`
	CarbsRatio   float64 `json:"carbsRatio"`
	FatsRatio    float64 `json:"fatsRatio"`
	Protein      string  `json:"protein"`
	Carbs        string  `json:"carbs"`
	Fats         string  `json:"fats"`
	Balanced     bool    `json:"balanced"`
}

type ratioRange struct{ min, max float64 }

var (
	idealProtein = ratioRange{0.20, 0.35}
	idealCarbs   = ratioRange{0.45, 0.65}
	idealFats    = ratioRange{0.20, 0.35}
)

func (r ratioRange) assess(v float64) string {
	switch {
	case v < r.min:
		return "low"
	case v > r.max:
		return "high"
	}
	return "optimal"
}

// AssessMacroBalance 按 4/4/9 kcal 换算供能比；没有任何宏量营养素时返回 nil
func AssessMacroBalance(m Macronutrients) *MacroBalance {
	protein := quantity(m.Proteins) * 4
	carbs := quantity(m.Carbs) * 4
	fats := quantity(m.Fats) * 9
	total := protein + carbs + fats
	if total == 0 {
		return nil
	}

	b := &MacroBalance{
		ProteinRatio: protein / total,
		CarbsRatio:   carbs / total,
		FatsRatio:    fats / total,
	}
	b.Protein = idealProtein.assess(b.ProteinRatio)
	b.Carbs = idealCarbs.assess(b.CarbsRatio)
	b.Fats = idealFats.assess(b.FatsRatio)
	b.Balanced = b.Protein == "optimal" && b.Carbs == "optimal" && b.Fats == "optimal"
	return b
}
