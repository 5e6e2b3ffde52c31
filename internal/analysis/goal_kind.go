package analysis

import (
	"math"
	"time"
)

type GoalType string

const (
	GoalWeight       GoalType = "weight"
	GoalMeasurements GoalType = "measurements"
	GoalNutrition    GoalType = "nutrition"
	GoalHabit        GoalType = "habit"
)

// GoalState 计算进度所需的目标信息
type GoalState struct {
	Type          GoalType
	StartingPoint float64
	Target        float64
	Current       float64
	History       []DataPoint
}

// GoalEvaluation 一次进度更新的计算结果
type GoalEvaluation struct {
	Completion float64            `json:"completionPercentage"`
	Progress   *GoalProgress      `json:"progress,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// GoalKind 每种目标类型各自实现一次进度计算
type GoalKind interface {
	Type() GoalType
	Evaluate(state GoalState, value float64, at time.Time) GoalEvaluation
}

// KindOf 按目标类型分派
func KindOf(t GoalType) (GoalKind, error) {
	switch t {
	case GoalWeight, GoalMeasurements:
		return directionalGoal{goalType: t}, nil
	case GoalNutrition:
		return nutritionGoal{}, nil
	case GoalHabit:
		return habitGoal{}, nil
	}
	return nil, ErrUnsupportedGoalType
}

// directionalGoal 体重、围度这类从起点走向目标值的目标，方向可增可减
type directionalGoal struct {
	goalType GoalType
}

func (g directionalGoal) Type() GoalType { return g.goalType }

func (g directionalGoal) Evaluate(state GoalState, value float64, at time.Time) GoalEvaluation {
	eval := GoalEvaluation{
		Progress: ComputeProgress(state.StartingPoint, state.Target, value),
		Metrics: map[string]float64{
			"change_since_start": value - state.StartingPoint,
			"change_since_last":  value - state.Current,
			"remaining":          math.Abs(state.Target - value),
		},
	}

	switch {
	case eval.Progress != nil:
		eval.Completion = eval.Progress.Percentage
	case value == state.Target:
		eval.Completion = 100
	}

	history := append(append([]DataPoint{}, state.History...), DataPoint{Timestamp: at, Value: value})
	if v := ComputeVelocity(history); v != nil {
		eval.Metrics["weekly_rate"] = v.Current * 7
	}

	return eval
}

// nutritionGoal 数值是达标率等累积型指标，目标为期望值
type nutritionGoal struct{}

func (nutritionGoal) Type() GoalType { return GoalNutrition }

func (nutritionGoal) Evaluate(state GoalState, value float64, _ time.Time) GoalEvaluation {
	return GoalEvaluation{
		Completion: targetPercentage(value, state.Target),
		Metrics: map[string]float64{
			"gap":               state.Target - value,
			"change_since_last": value - state.Current,
		},
	}
}

// habitGoal 数值是完成次数
type habitGoal struct{}

func (habitGoal) Type() GoalType { return GoalHabit }

func (habitGoal) Evaluate(state GoalState, value float64, _ time.Time) GoalEvaluation {
	remaining := state.Target - value
	if remaining < 0 {
		remaining = 0
	}
	return GoalEvaluation{
		Completion: targetPercentage(value, state.Target),
		Metrics: map[string]float64{
			"completions":          value,
			"remaining":            remaining,
			"completions_recorded": value - state.Current,
		},
	}
}

// OverallProgress 多个目标完成度的平均值
func OverallProgress(completions []float64) float64 {
	return ClampPercent(mean(completions))
}
