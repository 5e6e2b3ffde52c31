package analysis

import (
	"math"
	"sort"
	"time"
)

// StreakSummary 记录连续性。HasData 为 false 表示没有任何记录。
type StreakSummary struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	ConsistencyScore int        `json:"consistencyScore"`
	DaysLogged       int        `json:"daysLogged"`
	LastLoggedDate   *time.Time `json:"lastLoggedDate,omitempty"`
	HasData          bool       `json:"hasData"`
}

// AnalyzeStreak 以 now 的时区划分日历日。最近一次记录不是今天或昨天时，当前连续天数为 0。
func AnalyzeStreak(timestamps []time.Time, now time.Time) StreakSummary {
	if len(timestamps) == 0 {
		return StreakSummary{}
	}

	loc := now.Location()
	seen := make(map[int]time.Time, len(timestamps))
	for _, ts := range timestamps {
		local := ts.In(loc)
		seen[civilDay(local)] = DayStart(local)
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)

	running, longest := 0, 0
	for i, d := range days {
		if i > 0 && d == days[i-1]+1 {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}

	today := civilDay(now)
	last := days[len(days)-1]
	lastDate := seen[last]

	summary := StreakSummary{
		LongestStreak:  longest,
		DaysLogged:     len(days),
		LastLoggedDate: &lastDate,
		HasData:        true,
	}
	if today-last <= 1 {
		summary.CurrentStreak = running
	}

	elapsed := today - days[0] + 1
	if elapsed < len(days) {
		elapsed = len(days)
	}
	score := int(math.Round(100 * float64(len(days)) / float64(elapsed)))
	summary.ConsistencyScore = int(ClampPercent(float64(score)))

	return summary
}
