package analysis

import (
	"math"
	"strings"
	"time"
)

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes 按一天中的先后顺序排列
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// MainMeals 需要提醒的正餐
var MainMeals = []MealType{Breakfast, Lunch, Dinner}

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

type Macronutrients struct {
	Proteins float64 `json:"proteins"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// FoodLogEntry 一条已经完成营养标注的饮食记录
type FoodLogEntry struct {
	ID             uint               `json:"id"`
	UserID         uint               `json:"userId"`
	LogDate        time.Time          `json:"logDate"`
	MealType       MealType           `json:"mealType"`
	FoodItem       string             `json:"foodItem,omitempty"`
	Calories       float64            `json:"calories"`
	Macronutrients Macronutrients     `json:"macronutrients"`
	Micronutrients map[string]float64 `json:"micronutrients"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// NutrientKey 营养素名称去掉首尾空白并转为小写，目标与记录都按它匹配
func NutrientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DailyTotals 单个用户单日的营养汇总
type DailyTotals struct {
	Calories       float64            `json:"calories"`
	Macronutrients Macronutrients     `json:"macronutrients"`
	Micronutrients map[string]float64 `json:"micronutrients"`
}

// Amount 按营养素名称取值，热量与三大营养素使用固定字段，其余查微量营养素
func (t DailyTotals) Amount(nutrient string) float64 {
	key := NutrientKey(nutrient)
	switch key {
	case "calories", "energy", "kcal":
		return t.Calories
	case "protein", "proteins":
		return t.Macronutrients.Proteins
	case "carbs", "carbohydrates":
		return t.Macronutrients.Carbs
	case "fat", "fats":
		return t.Macronutrients.Fats
	}
	return t.Micronutrients[key]
}

// quantity 把损坏的存量数据（负数、NaN、Inf）归零
func quantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ClampPercent 百分比限制在 [0,100]，NaN 视为 0
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
