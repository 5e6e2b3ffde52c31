package analysis

import (
	"math"
	"sort"
	"time"
)

type LoggingFrequency string

const (
	FrequencyDaily         LoggingFrequency = "daily"
	FrequencyEveryOtherDay LoggingFrequency = "every_other_day"
	FrequencyWeekly        LoggingFrequency = "weekly"
	FrequencyIrregular     LoggingFrequency = "irregular"
)

// Consistency 记录间隔的规律性
type Consistency struct {
	Score                float64          `json:"consistencyScore"`
	LoggingFrequency     LoggingFrequency `json:"loggingFrequency"`
	AverageIntervalHours float64          `json:"averageIntervalHours"`
	MissedIntervals      int              `json:"missedDays"`
}

// AnalyzeConsistency 间隔方差越小得分越高；少于两个时间点返回 nil
func AnalyzeConsistency(timestamps []time.Time) *Consistency {
	if len(timestamps) < 2 {
		return nil
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].Sub(sorted[i-1]).Hours())
	}

	avg := mean(intervals)
	variance := 0.0
	for _, iv := range intervals {
		variance += (iv - avg) * (iv - avg)
	}
	variance /= float64(len(intervals))

	c := &Consistency{
		AverageIntervalHours: avg,
		LoggingFrequency:     frequencyFor(avg),
	}
	if avg > 0 {
		c.Score = ClampPercent(100 - variance/(avg*avg)*100)
	}

	// 期望间隔按整天取整，不足一天按一天算
	expected := math.Max(24, math.Round(avg/24)*24)
	for _, iv := range intervals {
		if iv > expected*1.5 {
			c.MissedIntervals++
		}
	}

	return c
}

func frequencyFor(avgHours float64) LoggingFrequency {
	switch {
	case avgHours <= 24:
		return FrequencyDaily
	case avgHours <= 48:
		return FrequencyEveryOtherDay
	case avgHours <= 168:
		return FrequencyWeekly
	}
	return FrequencyIrregular
}
