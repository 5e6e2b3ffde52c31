package model

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestFoodLogToEntryCoercesValues(t *testing.T) {
	created := time.Date(2024, 3, 4, 1, 30, 0, 0, time.UTC)
	log := FoodLog{
		BaseModel: BaseModel{ID: 7, CreatedAt: created},
		UserID:    3,
		LogDate:   "2024-03-04",
		MealType:  "breakfast",
		Calories:  420,
		Macronutrients: datatypes.JSONMap{
			"proteins": 20.5,
			"carbs":    "45",
			"fats":     "n/a",
		},
		Micronutrients: datatypes.JSONMap{"iron": 3, "zinc": nil},
	}

	loc := time.FixedZone("CST", 8*3600)
	e := log.ToEntry(loc)

	if e.Macronutrients.Proteins != 20.5 || e.Macronutrients.Carbs != 45 || e.Macronutrients.Fats != 0 {
		t.Fatalf("macros = %+v", e.Macronutrients)
	}
	if e.Micronutrients["iron"] != 3 || e.Micronutrients["zinc"] != 0 {
		t.Fatalf("micros = %v", e.Micronutrients)
	}
	if e.CreatedAt.Hour() != 9 {
		t.Fatalf("createdAt should be converted to the requested zone, got %v", e.CreatedAt)
	}
	if e.LogDate.Day() != 4 || e.LogDate.Location() != loc {
		t.Fatalf("log date = %v", e.LogDate)
	}
}

func TestGoalHistoryStartsAtStartingPoint(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Goal{
		BaseModel:     BaseModel{CreatedAt: created},
		StartingPoint: 70,
		ProgressHistory: []GoalProgressEntry{
			{RecordedAt: created.AddDate(0, 0, 7), Value: 69, Completion: 10},
		},
	}

	h := g.History()
	if len(h) != 2 || h[0].Value != 70 || h[1].Value != 69 {
		t.Fatalf("history = %+v", h)
	}
	if snap := g.LastSnapshot(); snap == nil || snap.Completion != 10 {
		t.Fatalf("last snapshot = %+v", snap)
	}
	if (Goal{}).LastSnapshot() != nil {
		t.Fatalf("expected nil snapshot without history")
	}
}

func TestChallengeWindow(t *testing.T) {
	c := Challenge{StartDate: "2024-05-01", DurationDays: 7}
	start, end, err := c.Window(time.UTC)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if start.Day() != 1 || end.Day() != 7 {
		t.Fatalf("window = %v - %v", start, end)
	}

	if _, _, err := (Challenge{StartDate: "May 1"}).Window(time.UTC); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMicronutrientKeysAreNormalized(t *testing.T) {
	stored := MicronutrientsMap(map[string]float64{"Vitamin C": 40, " vitamin c ": 10, "Iron": 2})
	if len(stored) != 2 || stored["vitamin c"] != 50.0 || stored["iron"] != 2.0 {
		t.Fatalf("stored = %v", stored)
	}

	// 旧数据可能保留原始大小写
	log := FoodLog{LogDate: "2024-03-04", Micronutrients: datatypes.JSONMap{"Vitamin C": 30, "vitamin c": 5}}
	e := log.ToEntry(time.UTC)
	if len(e.Micronutrients) != 1 || e.Micronutrients["vitamin c"] != 35 {
		t.Fatalf("entry micros = %v", e.Micronutrients)
	}
}
