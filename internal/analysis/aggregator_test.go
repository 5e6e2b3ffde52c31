package analysis

import (
	"math"
	"reflect"
	"testing"
)

func TestAggregateDaySumsPresentValues(t *testing.T) {
	entries := []FoodLogEntry{
		{Calories: 200},
		{Calories: 300, Macronutrients: Macronutrients{Proteins: 10}},
	}

	got := AggregateDay(entries)
	if got.Calories != 500 {
		t.Fatalf("calories = %v, want 500", got.Calories)
	}
	want := Macronutrients{Proteins: 10}
	if got.Macronutrients != want {
		t.Fatalf("macronutrients = %+v, want %+v", got.Macronutrients, want)
	}
	if len(got.Micronutrients) != 0 {
		t.Fatalf("micronutrients = %v, want empty", got.Micronutrients)
	}
}

func TestAggregateDayEmpty(t *testing.T) {
	got := AggregateDay(nil)
	if got.Calories != 0 || got.Macronutrients != (Macronutrients{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got.Micronutrients == nil {
		t.Fatalf("micronutrients should be an empty map, not nil")
	}
}

func TestAggregateDayMergesMicronutrients(t *testing.T) {
	entries := []FoodLogEntry{
		{Micronutrients: map[string]float64{"iron": 2, "vitamin_c": 30}},
		{Micronutrients: map[string]float64{"iron": 1.5}},
		{Micronutrients: map[string]float64{"calcium": math.NaN(), "vitamin_c": -5}},
	}

	got := AggregateDay(entries)
	want := map[string]float64{"iron": 3.5, "vitamin_c": 30, "calcium": 0}
	if !reflect.DeepEqual(got.Micronutrients, want) {
		t.Fatalf("micronutrients = %v, want %v", got.Micronutrients, want)
	}
}

func TestAggregateDayIsIdempotent(t *testing.T) {
	entries := []FoodLogEntry{
		{Calories: 123.4, Macronutrients: Macronutrients{Proteins: 1.1, Carbs: 2.2, Fats: 3.3}},
		{Calories: 0.6, Micronutrients: map[string]float64{"zinc": 0.3}},
	}

	first := AggregateDay(entries)
	for i := 0; i < 5; i++ {
		if again := AggregateDay(entries); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestDailyTotalsAmount(t *testing.T) {
	totals := DailyTotals{
		Calories:       1800,
		Macronutrients: Macronutrients{Proteins: 90, Carbs: 200, Fats: 60},
		Micronutrients: map[string]float64{"iron": 12},
	}

	tests := []struct {
		nutrient string
		want     float64
	}{
		{"calories", 1800},
		{"Protein", 90},
		{"carbohydrates", 200},
		{"fats", 60},
		{"iron", 12},
		{"IRON", 12},
		{"sodium", 0},
	}
	for _, tt := range tests {
		if got := totals.Amount(tt.nutrient); got != tt.want {
			t.Errorf("Amount(%q) = %v, want %v", tt.nutrient, got, tt.want)
		}
	}
}

func TestAssessMacroBalance(t *testing.T) {
	if b := AssessMacroBalance(Macronutrients{}); b != nil {
		t.Fatalf("expected nil for empty macros, got %+v", b)
	}

	// 25% / 50% / 25% 的供能比
	balanced := AssessMacroBalance(Macronutrients{Proteins: 25, Carbs: 50, Fats: 100.0 / 9})
	if balanced == nil || !balanced.Balanced {
		t.Fatalf("expected balanced meal, got %+v", balanced)
	}

	fatty := AssessMacroBalance(Macronutrients{Proteins: 5, Carbs: 5, Fats: 40})
	if fatty.Balanced || fatty.Fats != "high" || fatty.Carbs != "low" {
		t.Fatalf("unexpected assessment %+v", fatty)
	}
}
