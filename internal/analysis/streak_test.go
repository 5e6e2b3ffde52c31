package analysis

import (
	"testing"
	"time"
)

func TestAnalyzeStreak(t *testing.T) {
	// 2024-03-04 是周一
	mon := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	logs := []time.Time{mon, mon.AddDate(0, 0, 1), mon.AddDate(0, 0, 2).Add(3 * time.Hour)}

	tests := []struct {
		name        string
		now         time.Time
		wantCurrent int
		wantLongest int
		wantScore   int
	}{
		{"today is wednesday", mon.AddDate(0, 0, 2).Add(8 * time.Hour), 3, 3, 100},
		{"today is thursday", mon.AddDate(0, 0, 3), 3, 3, 75},
		{"today is friday", mon.AddDate(0, 0, 4), 0, 3, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeStreak(logs, tt.now)
			if got.CurrentStreak != tt.wantCurrent || got.LongestStreak != tt.wantLongest {
				t.Fatalf("streak = %d/%d, want %d/%d", got.CurrentStreak, got.LongestStreak, tt.wantCurrent, tt.wantLongest)
			}
			if got.ConsistencyScore != tt.wantScore {
				t.Fatalf("score = %d, want %d", got.ConsistencyScore, tt.wantScore)
			}
			if !got.HasData || got.DaysLogged != 3 {
				t.Fatalf("unexpected summary %+v", got)
			}
		})
	}
}

func TestAnalyzeStreakEmpty(t *testing.T) {
	got := AnalyzeStreak(nil, time.Now())
	if got.HasData || got.CurrentStreak != 0 || got.LongestStreak != 0 || got.ConsistencyScore != 0 {
		t.Fatalf("expected no data, got %+v", got)
	}
}

func TestAnalyzeStreakBrokenRun(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	logs := []time.Time{
		base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2), base.AddDate(0, 0, 3),
		base.AddDate(0, 0, 6), base.AddDate(0, 0, 7),
		base.AddDate(0, 0, 7).Add(2 * time.Hour),
	}

	got := AnalyzeStreak(logs, base.AddDate(0, 0, 8))
	if got.CurrentStreak != 2 || got.LongestStreak != 4 || got.DaysLogged != 6 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestAnalyzeStreakUsesCallerTimezone(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// UTC 下跨两天，在 UTC+8 下是同一天
	logs := []time.Time{
		time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, shanghai)

	got := AnalyzeStreak(logs, now)
	if got.DaysLogged != 1 || got.CurrentStreak != 1 {
		t.Fatalf("unexpected summary %+v", got)
	}
}
