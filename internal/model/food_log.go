package model

import (
	"time"

	"nutritrack_backend/internal/analysis"

	"github.com/spf13/cast"
	"gorm.io/datatypes"
)

type FoodLogSource string

const (
	SourceManual FoodLogSource = "manual"
	SourcePhoto  FoodLogSource = "photo"
	SourceVoice  FoodLogSource = "voice"
	SourceAI     FoodLogSource = "ai"
)

func (s FoodLogSource) Valid() bool {
	switch s {
	case SourceManual, SourcePhoto, SourceVoice, SourceAI:
		return true
	}
	return false
}

// FoodLog 用户的一条饮食记录。LogDate 以 yyyy-mm-dd 存储，按字符串比较即可做区间查询。
type FoodLog struct {
	BaseModel
	UserID         uint              `gorm:"index:idx_food_log_user_date,priority:1;not null" json:"userId"`
	LogDate        string            `gorm:"size:10;index:idx_food_log_user_date,priority:2;not null" json:"logDate"`
	MealType       string            `gorm:"size:20;not null" json:"mealType"`
	FoodItem       string            `gorm:"size:255" json:"foodItem"`
	Quantity       string            `gorm:"size:64" json:"quantity,omitempty"`
	Source         FoodLogSource     `gorm:"size:20;default:manual" json:"source"`
	Calories       float64           `gorm:"default:0" json:"calories"`
	Macronutrients datatypes.JSONMap `json:"macronutrients"`
	Micronutrients datatypes.JSONMap `json:"micronutrients"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
}

func (FoodLog) TableName() string {
	return "food_logs"
}

// ToEntry 转换为分析用的记录。JSON 列里无法识别的数值按 0 处理。
func (f FoodLog) ToEntry(loc *time.Location) analysis.FoodLogEntry {
	logDate, err := analysis.ParseDate(f.LogDate, loc)
	if err != nil {
		logDate = analysis.DayStart(f.CreatedAt.In(loc))
	}

	return analysis.FoodLogEntry{
		ID:       f.ID,
		UserID:   f.UserID,
		LogDate:  logDate,
		MealType: analysis.MealType(f.MealType),
		FoodItem: f.FoodItem,
		Calories: f.Calories,
		Macronutrients: analysis.Macronutrients{
			Proteins: floatField(f.Macronutrients, "proteins"),
			Carbs:    floatField(f.Macronutrients, "carbs"),
			Fats:     floatField(f.Macronutrients, "fats"),
		},
		Micronutrients: micronutrientValues(f.Micronutrients),
		CreatedAt:      f.CreatedAt.In(loc),
	}
}

func floatField(m datatypes.JSONMap, key string) float64 {
	if m == nil {
		return 0
	}
	v, err := cast.ToFloat64E(m[key])
	if err != nil {
		return 0
	}
	return v
}

// micronutrientValues 旧数据里大小写不同的同名营养素合并求和
func micronutrientValues(m datatypes.JSONMap) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k := range m {
		out[analysis.NutrientKey(k)] += floatField(m, k)
	}
	return out
}

// MacronutrientsMap 转成 JSON 列的存储格式
func MacronutrientsMap(m analysis.Macronutrients) datatypes.JSONMap {
	return datatypes.JSONMap{
		"proteins": m.Proteins,
		"carbs":    m.Carbs,
		"fats":     m.Fats,
	}
}

// MicronutrientsMap 键统一为 NutrientKey，合并后同名的数值相加
func MicronutrientsMap(m map[string]float64) datatypes.JSONMap {
	sums := make(map[string]float64, len(m))
	for k, v := range m {
		sums[analysis.NutrientKey(k)] += v
	}
	out := make(datatypes.JSONMap, len(sums))
	for k, v := range sums {
		out[k] = v
	}
	return out
}

func ToEntries(logs []FoodLog, loc *time.Location) []analysis.FoodLogEntry {
	entries := make([]analysis.FoodLogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, l.ToEntry(loc))
	}
	return entries
}
