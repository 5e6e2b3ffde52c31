package analysis

import (
	"math"
	"sort"
	"time"
)

// Trend 速度变化趋势，全局只使用这一套标签
type Trend string

const (
	TrendAccelerating     Trend = "accelerating"
	TrendDecelerating     Trend = "decelerating"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

const trendThreshold = 0.10

type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Velocity 每天的变化量
type Velocity struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Trend   Trend   `json:"trend"`
	Samples int     `json:"samples"`
}

func sortedPoints(history []DataPoint) []DataPoint {
	points := make([]DataPoint, len(history))
	copy(points, history)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// ComputeVelocity 至少需要两个数据点；同一时刻的相邻点无法求速度，直接跳过
func ComputeVelocity(history []DataPoint) *Velocity {
	if len(history) < 2 {
		return nil
	}

	points := sortedPoints(history)
	velocities := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		days := points[i].Timestamp.Sub(points[i-1].Timestamp).Hours() / 24
		if days <= 0 {
			continue
		}
		v := (points[i].Value - points[i-1].Value) / days
		if !finite(v) {
			continue
		}
		velocities = append(velocities, v)
	}

	if len(velocities) == 0 {
		return nil
	}

	return &Velocity{
		Current: velocities[len(velocities)-1],
		Average: mean(velocities),
		Trend:   velocityTrend(velocities),
		Samples: len(velocities),
	}
}

// velocityTrend 最近三次速度的均值与更早速度的均值比较，相对变化超过 10% 视为加速或减速
func velocityTrend(velocities []float64) Trend {
	if len(velocities) < 3 {
		return TrendInsufficientData
	}

	recent := mean(velocities[len(velocities)-3:])
	earlier := velocities[:len(velocities)-3]
	if len(earlier) == 0 {
		return TrendStable
	}
	previous := mean(earlier)

	if previous == 0 {
		switch {
		case recent > 0:
			return TrendAccelerating
		case recent < 0:
			return TrendDecelerating
		}
		return TrendStable
	}

	change := (recent - previous) / math.Abs(previous)
	switch {
	case change > trendThreshold:
		return TrendAccelerating
	case change < -trendThreshold:
		return TrendDecelerating
	}
	return TrendStable
}
