package analysis

type ProgressStatus string

const (
	StatusCompleted      ProgressStatus = "completed"
	StatusAlmostThere    ProgressStatus = "almost_there"
	StatusHalfway        ProgressStatus = "halfway"
	StatusGettingStarted ProgressStatus = "getting_started"
	StatusJustBegan      ProgressStatus = "just_began"
)

// GoalProgress 从起点到目标的完成情况
type GoalProgress struct {
	Percentage float64        `json:"percentage"`
	Remaining  float64        `json:"remaining"`
	Change     float64        `json:"change"`
	Status     ProgressStatus `json:"status"`
}

// ComputeProgress 支持增长型（target > start）和下降型（target < start）目标。
// target == start 时没有方向可言，返回 nil。
func ComputeProgress(startingPoint, target, current float64) *GoalProgress {
	totalChange := target - startingPoint
	if totalChange == 0 || !finite(totalChange) || !finite(current) {
		return nil
	}

	change := current - startingPoint
	percentage := ClampPercent(change / totalChange * 100)

	return &GoalProgress{
		Percentage: percentage,
		Remaining:  target - current,
		Change:     change,
		Status:     StatusFor(percentage),
	}
}

func StatusFor(percentage float64) ProgressStatus {
	switch {
	case percentage >= 100:
		return StatusCompleted
	case percentage >= 75:
		return StatusAlmostThere
	case percentage >= 50:
		return StatusHalfway
	case percentage >= 25:
		return StatusGettingStarted
	}
	return StatusJustBegan
}
