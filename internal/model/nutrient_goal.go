package model

import "nutritrack_backend/internal/analysis"

// NutrientGoal 每个用户每种营养素只有一条
type NutrientGoal struct {
	BaseModel
	UserID      uint    `gorm:"uniqueIndex:idx_user_nutrient;not null" json:"userId"`
	Nutrient    string  `gorm:"size:64;uniqueIndex:idx_user_nutrient;not null" json:"nutrient"`
	DailyTarget float64 `gorm:"not null" json:"dailyTarget"`
	Unit        string  `gorm:"size:16" json:"unit"`
	Category    string  `gorm:"size:32" json:"category"`
}

func (NutrientGoal) TableName() string {
	return "nutrient_goals"
}

func (g NutrientGoal) ToTarget() analysis.NutrientTarget {
	return analysis.NutrientTarget{
		Nutrient:    g.Nutrient,
		DailyTarget: g.DailyTarget,
		Unit:        g.Unit,
		Category:    g.Category,
	}
}

func ToTargets(goals []NutrientGoal) []analysis.NutrientTarget {
	targets := make([]analysis.NutrientTarget, 0, len(goals))
	for _, g := range goals {
		targets = append(targets, g.ToTarget())
	}
	return targets
}
