package model

import (
	"time"

	"nutritrack_backend/internal/analysis"

	"gorm.io/datatypes"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalFailed    GoalStatus = "failed"
	GoalPaused    GoalStatus = "paused"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalFailed, GoalPaused:
		return true
	}
	return false
}

type Goal struct {
	BaseModel
	UserID          uint                `gorm:"index;not null" json:"userId"`
	Type            string              `gorm:"size:32;index;not null" json:"type"`
	Title           string              `gorm:"size:255" json:"title"`
	Unit            string              `gorm:"size:16" json:"unit,omitempty"`
	StartingPoint   float64             `json:"startingPoint"`
	Current         float64             `json:"current"`
	Target          float64             `gorm:"not null" json:"target"`
	Deadline        *time.Time          `json:"deadline,omitempty"`
	Status          GoalStatus          `gorm:"size:20;default:active" json:"status"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	Milestones      []GoalMilestone     `gorm:"foreignKey:GoalID" json:"milestones"`
	ProgressHistory []GoalProgressEntry `gorm:"foreignKey:GoalID" json:"progressHistory,omitempty"`
}

func (Goal) TableName() string {
	return "goals"
}

// GoalMilestone 达成状态只会从 false 变为 true
type GoalMilestone struct {
	UUIDBase
	GoalID     uint       `gorm:"index;not null" json:"goalId"`
	Name       string     `gorm:"size:128" json:"name"`
	Sequence   int        `json:"sequence"`
	Threshold  float64    `json:"threshold"`
	Metric     string     `gorm:"size:16;default:completion" json:"metric"`
	Descending bool       `json:"descending,omitempty"`
	Achieved   bool       `gorm:"default:false" json:"achieved"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

func (GoalMilestone) TableName() string {
	return "goal_milestones"
}

type GoalProgressEntry struct {
	BaseModel
	GoalID     uint                                   `gorm:"index;not null" json:"goalId"`
	RecordedAt time.Time                              `gorm:"index" json:"recordedAt"`
	Value      float64                                `json:"value"`
	Completion float64                                `json:"completion"`
	Metrics    datatypes.JSONType[map[string]float64] `json:"metrics"`
	Notes      string                                 `gorm:"type:text" json:"notes,omitempty"`
}

func (GoalProgressEntry) TableName() string {
	return "goal_progress_entries"
}

func (m GoalMilestone) ToMilestone() analysis.Milestone {
	metric := analysis.MilestoneMetric(m.Metric)
	if metric == "" {
		metric = analysis.MetricCompletion
	}
	return analysis.Milestone{
		ID:         m.ID,
		Name:       m.Name,
		Sequence:   m.Sequence,
		Threshold:  m.Threshold,
		Metric:     metric,
		Descending: m.Descending,
		Achieved:   m.Achieved,
		AchievedAt: m.AchievedAt,
	}
}

func MilestoneFrom(goalID uint, m analysis.Milestone) GoalMilestone {
	return GoalMilestone{
		UUIDBase:   UUIDBase{ID: m.ID},
		GoalID:     goalID,
		Name:       m.Name,
		Sequence:   m.Sequence,
		Threshold:  m.Threshold,
		Metric:     string(m.Metric),
		Descending: m.Descending,
		Achieved:   m.Achieved,
		AchievedAt: m.AchievedAt,
	}
}

func (g Goal) AnalysisMilestones() []analysis.Milestone {
	out := make([]analysis.Milestone, 0, len(g.Milestones))
	for _, m := range g.Milestones {
		out = append(out, m.ToMilestone())
	}
	return out
}

// History 进度历史转成时间序列，起点作为第一个点
func (g Goal) History() []analysis.DataPoint {
	points := make([]analysis.DataPoint, 0, len(g.ProgressHistory)+1)
	points = append(points, analysis.DataPoint{Timestamp: g.CreatedAt, Value: g.StartingPoint})
	for _, p := range g.ProgressHistory {
		points = append(points, analysis.DataPoint{Timestamp: p.RecordedAt, Value: p.Value})
	}
	return points
}

func (g Goal) State() analysis.GoalState {
	return analysis.GoalState{
		Type:          analysis.GoalType(g.Type),
		StartingPoint: g.StartingPoint,
		Target:        g.Target,
		Current:       g.Current,
		History:       g.History(),
	}
}

// LastSnapshot 最近一次进度，没有历史时返回 nil
func (g Goal) LastSnapshot() *analysis.MilestoneSnapshot {
	if len(g.ProgressHistory) == 0 {
		return nil
	}
	last := g.ProgressHistory[len(g.ProgressHistory)-1]
	return &analysis.MilestoneSnapshot{Value: last.Value, Completion: last.Completion}
}
