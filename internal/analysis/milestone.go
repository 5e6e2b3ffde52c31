package analysis

import (
	"sort"
	"time"
)

type MilestoneMetric string

const (
	// MetricCompletion 阈值是完成百分比
	MetricCompletion MilestoneMetric = "completion"
	// MetricValue 阈值是原始数值，Descending 为 true 时数值降到阈值以下才算达成
	MetricValue MilestoneMetric = "value"
)

type Milestone struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Sequence   int             `json:"sequence"`
	Threshold  float64         `json:"threshold"`
	Metric     MilestoneMetric `json:"metric"`
	Descending bool            `json:"descending,omitempty"`
	Achieved   bool            `json:"achieved"`
	AchievedAt *time.Time      `json:"achievedAt,omitempty"`
}

// MilestoneSnapshot 某一时刻的进度
type MilestoneSnapshot struct {
	Value      float64 `json:"value"`
	Completion float64 `json:"completion"`
}

func (m Milestone) SatisfiedBy(s MilestoneSnapshot) bool {
	if m.Metric == MetricValue {
		if m.Descending {
			return s.Value <= m.Threshold
		}
		return s.Value >= m.Threshold
	}
	return s.Completion >= m.Threshold
}

// DetectNewMilestones 找出 previous 下未满足、current 下满足的里程碑。
// 已标记达成的里程碑不再上报；previous 为 nil 表示此前没有任何进度。
func DetectNewMilestones(previous *MilestoneSnapshot, current MilestoneSnapshot, milestones []Milestone) []Milestone {
	crossed := []Milestone{}
	for _, m := range milestones {
		if m.Achieved {
			continue
		}
		if previous != nil && m.SatisfiedBy(*previous) {
			continue
		}
		if m.SatisfiedBy(current) {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

// MarkAchieved 返回新切片，crossed 中的里程碑被标记为达成；已达成的保持不变
func MarkAchieved(milestones []Milestone, crossed []Milestone, at time.Time) []Milestone {
	ids := make(map[string]struct{}, len(crossed))
	for _, c := range crossed {
		ids[c.ID] = struct{}{}
	}

	out := make([]Milestone, len(milestones))
	for i, m := range milestones {
		if _, ok := ids[m.ID]; ok && !m.Achieved {
			achievedAt := at
			m.Achieved = true
			m.AchievedAt = &achievedAt
		}
		out[i] = m
	}
	return out
}

// NextMilestone 按顺序返回第一个未达成的里程碑
func NextMilestone(milestones []Milestone) *Milestone {
	sorted := make([]Milestone, len(milestones))
	copy(sorted, milestones)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })
	for _, m := range sorted {
		if !m.Achieved {
			next := m
			return &next
		}
	}
	return nil
}

var defaultMilestones = []struct {
	name      string
	threshold float64
}{
	{"Quarter way there", 25},
	{"Halfway there", 50},
	{"Almost there", 75},
	{"Goal reached", 100},
}

// GenerateMilestones 生成 25/50/75/100% 四个完成度里程碑
func GenerateMilestones(newID func() string) []Milestone {
	milestones := make([]Milestone, 0, len(defaultMilestones))
	for i, d := range defaultMilestones {
		milestones = append(milestones, Milestone{
			ID:        newID(),
			Name:      d.name,
			Sequence:  i + 1,
			Threshold: d.threshold,
			Metric:    MetricCompletion,
		})
	}
	return milestones
}

// MilestoneAnalysis 里程碑整体情况
type MilestoneAnalysis struct {
	Total    int        `json:"total"`
	Achieved int        `json:"achieved"`
	Next     *Milestone `json:"nextMilestone,omitempty"`
}

func AnalyzeMilestones(milestones []Milestone) MilestoneAnalysis {
	a := MilestoneAnalysis{Total: len(milestones), Next: NextMilestone(milestones)}
	for _, m := range milestones {
		if m.Achieved {
			a.Achieved++
		}
	}
	return a
}
