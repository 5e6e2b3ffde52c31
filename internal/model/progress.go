package model

import (
	"nutritrack_backend/internal/analysis"

	"gorm.io/datatypes"
)

// Progress 用户每天一条的营养快照
type Progress struct {
	BaseModel
	UserID          uint                                                `gorm:"uniqueIndex:idx_progress_user_date;not null" json:"userId"`
	Date            string                                              `gorm:"size:10;uniqueIndex:idx_progress_user_date;not null" json:"date"`
	CalorieIntake   float64                                             `json:"calorieIntake"`
	EntryCount      int                                                 `json:"entryCount"`
	Macronutrients  datatypes.JSONType[analysis.Macronutrients]         `json:"macronutrients"`
	GoalsProgress   datatypes.JSONType[[]analysis.NutrientGoalProgress] `json:"goalsProgress"`
	Deficits        datatypes.JSONType[[]analysis.NutrientDeficit]      `json:"nutrientDeficits"`
	Insights        datatypes.JSONMap                                   `json:"insights,omitempty"`
	Recommendations datatypes.JSONType[[]string]                        `json:"recommendations"`
}

func (Progress) TableName() string {
	return "progress"
}

// ProgressFromRecord 由单日分析结果生成快照
func ProgressFromRecord(userID uint, r analysis.DailyRecord, insights map[string]interface{}, recommendations []string) Progress {
	if recommendations == nil {
		recommendations = []string{}
	}
	return Progress{
		UserID:          userID,
		Date:            analysis.DateKey(r.Date),
		CalorieIntake:   r.Totals.Calories,
		EntryCount:      r.EntryCount,
		Macronutrients:  datatypes.NewJSONType(r.Totals.Macronutrients),
		GoalsProgress:   datatypes.NewJSONType(r.GoalsProgress),
		Deficits:        datatypes.NewJSONType(r.Deficits),
		Insights:        datatypes.JSONMap(insights),
		Recommendations: datatypes.NewJSONType(recommendations),
	}
}
