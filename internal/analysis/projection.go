package analysis

import (
	"math"
	"time"
)

// maxProjectionDays 超过一百年的预测没有意义，天数在此截断
const maxProjectionDays = 36500

type ConfidenceFactors struct {
	VelocityStability   float64 `json:"velocityStability"`
	ProgressConsistency float64 `json:"progressConsistency"`
	TimeRemaining       float64 `json:"timeRemaining"`
}

// Projection 完成日期预测。DaysRemaining 为负表示正在远离目标。
type Projection struct {
	EstimatedCompletionDate time.Time         `json:"estimatedCompletionDate"`
	DaysRemaining           int               `json:"daysRemaining"`
	Confidence              float64           `json:"confidence"`
	Factors                 ConfidenceFactors `json:"factors"`
}

type ProjectionOptions struct {
	Now      time.Time
	Deadline *time.Time
}

// ProjectCompletion 用当前速度外推到目标值；没有速度或速度为 0 时返回 nil
func ProjectCompletion(history []DataPoint, target float64, opts ProjectionOptions) *Projection {
	velocity := ComputeVelocity(history)
	if velocity == nil || velocity.Current == 0 {
		return nil
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	points := sortedPoints(history)
	lastValue := points[len(points)-1].Value

	days := (target - lastValue) / velocity.Current
	if !finite(days) {
		return nil
	}
	days = math.Max(-maxProjectionDays, math.Min(maxProjectionDays, days))

	timestamps := make([]time.Time, len(points))
	for i, p := range points {
		timestamps[i] = p.Timestamp
	}

	factors := ConfidenceFactors{
		VelocityStability:   velocityStability(velocity),
		ProgressConsistency: progressConsistency(timestamps),
		TimeRemaining:       timeRemainingAdequacy(days, now, opts.Deadline),
	}

	return &Projection{
		EstimatedCompletionDate: now.Add(time.Duration(days * 24 * float64(time.Hour))),
		DaysRemaining:           int(math.Ceil(days)),
		Confidence:              ClampPercent((factors.VelocityStability + factors.ProgressConsistency + factors.TimeRemaining) / 3),
		Factors:                 factors,
	}
}

func velocityStability(v *Velocity) float64 {
	if v.Average == 0 {
		if v.Current == 0 {
			return 100
		}
		return 0
	}
	return ClampPercent((1 - math.Abs(v.Current-v.Average)/math.Abs(v.Average)) * 100)
}

func progressConsistency(timestamps []time.Time) float64 {
	c := AnalyzeConsistency(timestamps)
	if c == nil {
		return 0
	}
	return c.Score
}

// timeRemainingAdequacy 预计天数落在截止日期之内得满分，超出部分按比例扣减
func timeRemainingAdequacy(days float64, now time.Time, deadline *time.Time) float64 {
	if days < 0 {
		return 0
	}
	if deadline == nil {
		return 100
	}
	available := deadline.Sub(now).Hours() / 24
	if available <= 0 {
		return 0
	}
	if days == 0 {
		return 100
	}
	return ClampPercent(available / days * 100)
}
