package analysis

import (
	"math"
	"testing"
	"time"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name                   string
		start, target, current float64
		wantPct                float64
		wantStatus             ProgressStatus
	}{
		{"weight loss halfway", 70, 60, 65, 50, StatusHalfway},
		{"increase just began", 10, 20, 11, 10, StatusJustBegan},
		{"overshoot clamps", 10, 20, 25, 100, StatusCompleted},
		{"wrong direction clamps", 70, 60, 72, 0, StatusJustBegan},
		{"almost there", 0, 100, 80, 80, StatusAlmostThere},
		{"getting started", 0, 100, 25, 25, StatusGettingStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProgress(tt.start, tt.target, tt.current)
			if got == nil {
				t.Fatalf("unexpected nil progress")
			}
			if got.Percentage != tt.wantPct || got.Status != tt.wantStatus {
				t.Fatalf("got %v %s, want %v %s", got.Percentage, got.Status, tt.wantPct, tt.wantStatus)
			}
		})
	}
}

func TestComputeProgressEqualStartAndTarget(t *testing.T) {
	if got := ComputeProgress(65, 65, 70); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestComputeVelocity(t *testing.T) {
	if v := ComputeVelocity([]DataPoint{{Timestamp: day(0), Value: 1}}); v != nil {
		t.Fatalf("expected nil for single point")
	}

	same := []DataPoint{{Timestamp: day(0), Value: 1}, {Timestamp: day(0), Value: 2}}
	if v := ComputeVelocity(same); v != nil {
		t.Fatalf("expected nil when no time elapsed, got %+v", v)
	}

	history := []DataPoint{
		{Timestamp: day(2), Value: 68},
		{Timestamp: day(0), Value: 70},
	}
	v := ComputeVelocity(history)
	if v == nil || v.Current != -1 || v.Trend != TrendInsufficientData {
		t.Fatalf("unexpected velocity %+v", v)
	}
}

func TestVelocityTrend(t *testing.T) {
	tests := []struct {
		name       string
		velocities []float64
		want       Trend
	}{
		{"too few", []float64{1, 2}, TrendInsufficientData},
		{"exactly three", []float64{1, 2, 3}, TrendStable},
		{"accelerating", []float64{1, 1, 2, 2, 2}, TrendAccelerating},
		{"decelerating", []float64{2, 2, 1, 1, 1}, TrendDecelerating},
		{"stable", []float64{1, 1, 1.05, 1, 1}, TrendStable},
		{"from zero upward", []float64{0, 0, 1, 1, 1}, TrendAccelerating},
		{"negative baseline", []float64{-2, -2, -1, -1, -1}, TrendAccelerating},
	}
	for _, tt := range tests {
		if got := velocityTrend(tt.velocities); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestProjectCompletion(t *testing.T) {
	now := day(4)
	history := []DataPoint{
		{Timestamp: day(0), Value: 70},
		{Timestamp: day(1), Value: 69},
		{Timestamp: day(2), Value: 68},
		{Timestamp: day(3), Value: 67},
	}

	p := ProjectCompletion(history, 60, ProjectionOptions{Now: now})
	if p == nil {
		t.Fatalf("expected projection")
	}
	if p.DaysRemaining != 7 {
		t.Fatalf("days remaining = %d, want 7", p.DaysRemaining)
	}
	if p.Factors.VelocityStability != 100 || p.Factors.TimeRemaining != 100 {
		t.Fatalf("unexpected factors %+v", p.Factors)
	}
	if math.Abs(p.Confidence-100) > 1e-9 {
		t.Fatalf("confidence = %v, want 100", p.Confidence)
	}

	deadline := now.AddDate(0, 0, 3)
	tight := ProjectCompletion(history, 60, ProjectionOptions{Now: now, Deadline: &deadline})
	if tight.Factors.TimeRemaining >= 100 {
		t.Fatalf("expected reduced time factor, got %v", tight.Factors.TimeRemaining)
	}

	moving := ProjectCompletion(history, 80, ProjectionOptions{Now: now})
	if moving.DaysRemaining >= 0 || moving.Factors.TimeRemaining != 0 {
		t.Fatalf("moving away from target should give negative days, got %+v", moving)
	}
}

func TestProjectCompletionFlat(t *testing.T) {
	history := []DataPoint{{Timestamp: day(0), Value: 5}, {Timestamp: day(1), Value: 5}}
	if p := ProjectCompletion(history, 10, ProjectionOptions{Now: day(2)}); p != nil {
		t.Fatalf("expected nil for zero velocity, got %+v", p)
	}
}

func TestAnalyzeConsistency(t *testing.T) {
	if c := AnalyzeConsistency([]time.Time{day(0)}); c != nil {
		t.Fatalf("expected nil for single timestamp")
	}

	regular := AnalyzeConsistency([]time.Time{day(0), day(1), day(2), day(3)})
	if regular.Score != 100 || regular.LoggingFrequency != FrequencyDaily || regular.MissedIntervals != 0 {
		t.Fatalf("unexpected %+v", regular)
	}

	gappy := AnalyzeConsistency([]time.Time{day(0), day(1), day(2), day(6)})
	if gappy.Score >= 100 || gappy.MissedIntervals != 1 {
		t.Fatalf("unexpected %+v", gappy)
	}
}
