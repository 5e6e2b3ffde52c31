package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/monitoring"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GoalService struct {
	repo     *repository.GoalRepository
	notifier Notifier
	insights InsightGenerator
	loc      *time.Location
	now      func() time.Time

	insightsOff atomic.Bool
}

func NewGoalService(repo *repository.GoalRepository, notifier Notifier, insights InsightGenerator, loc *time.Location) *GoalService {
	if insights == nil {
		insights = NoopInsightGenerator{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &GoalService{repo: repo, notifier: notifier, insights: insights, loc: loc, now: time.Now}
}

// UpdateConfig 热更新时同步是否生成 AI 解读
func (s *GoalService) UpdateConfig(cfg config.AnalysisConfig) {
	s.insightsOff.Store(!cfg.InsightsEnabled)
}

type CreateGoalInput struct {
	Type          string   `json:"type" binding:"required"`
	Title         string   `json:"title"`
	Unit          string   `json:"unit"`
	Target        float64  `json:"target"`
	StartingPoint *float64 `json:"startingPoint"`
	Current       *float64 `json:"current"`
	Deadline      string   `json:"deadline"`
}

type UpdateProgressInput struct {
	Value float64 `json:"value"`
	Notes string  `json:"notes"`
}

type AdjustGoalInput struct {
	Title    *string  `json:"title"`
	Target   *float64 `json:"target"`
	Deadline *string  `json:"deadline"`
}

// ProgressResult 一次进度更新的结果
type ProgressResult struct {
	Goal          *model.Goal             `json:"goal"`
	Evaluation    analysis.GoalEvaluation `json:"evaluation"`
	NewMilestones []analysis.Milestone    `json:"newMilestones"`
	Completed     bool                    `json:"completed"`
}

type GoalAnalysis struct {
	GoalID      uint                       `json:"goalId"`
	Title       string                     `json:"title"`
	Type        string                     `json:"type"`
	Status      model.GoalStatus           `json:"status"`
	Completion  float64                    `json:"completionPercentage"`
	Progress    *analysis.GoalProgress     `json:"progress,omitempty"`
	Velocity    *analysis.Velocity         `json:"velocity,omitempty"`
	Consistency *analysis.Consistency      `json:"consistency,omitempty"`
	Projection  *analysis.Projection       `json:"projection,omitempty"`
	Milestones  analysis.MilestoneAnalysis `json:"milestones"`
}

type GoalsAnalysis struct {
	Goals           []GoalAnalysis `json:"goals"`
	OverallProgress float64        `json:"overallProgress"`
	Insights        Insights       `json:"insights"`
}

func (s *GoalService) parseDeadline(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := analysis.ParseDate(raw, s.loc)
	if err != nil {
		return nil, util.ErrInvalidDate
	}
	return &d, nil
}

func (s *GoalService) find(ctx context.Context, userID, goalID uint) (*model.Goal, error) {
	goal, err := s.repo.FindByID(ctx, userID, goalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrGoalNotFound
	}
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("goal_store").Inc()
		return nil, fmt.Errorf("load goal: %w", err)
	}
	return goal, nil
}

func kindOf(goalType string) (analysis.GoalKind, error) {
	kind, err := analysis.KindOf(analysis.GoalType(goalType))
	if err != nil {
		return nil, util.ErrUnsupportedGoalType
	}
	return kind, nil
}

// Create 未给出起点时以当前值为起点，都没有时从 0 开始
func (s *GoalService) Create(ctx context.Context, userID uint, in CreateGoalInput) (*model.Goal, error) {
	if _, err := kindOf(in.Type); err != nil {
		return nil, err
	}
	deadline, err := s.parseDeadline(in.Deadline)
	if err != nil {
		return nil, err
	}

	var start, current float64
	switch {
	case in.StartingPoint != nil:
		start = *in.StartingPoint
	case in.Current != nil:
		start = *in.Current
	}
	current = start
	if in.Current != nil {
		current = *in.Current
	}

	goal := &model.Goal{
		UserID:        userID,
		Type:          in.Type,
		Title:         in.Title,
		Unit:          in.Unit,
		StartingPoint: start,
		Current:       current,
		Target:        in.Target,
		Deadline:      deadline,
		Status:        model.GoalActive,
	}
	for _, m := range analysis.GenerateMilestones(model.GenerateUUID) {
		goal.Milestones = append(goal.Milestones, model.MilestoneFrom(0, m))
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID uint, goalType string, status model.GoalStatus) ([]model.Goal, error) {
	goals, err := s.repo.FindByUser(ctx, userID, goalType, status)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// previousSnapshot 用当前目标值重新计算上一次进度的完成度，目标调整过也能正确判断里程碑
func previousSnapshot(kind analysis.GoalKind, goal *model.Goal) *analysis.MilestoneSnapshot {
	last := goal.LastSnapshot()
	if last == nil {
		return nil
	}
	state := goal.State()
	state.History = state.History[:len(state.History)-1]
	eval := kind.Evaluate(state, last.Value, goal.ProgressHistory[len(goal.ProgressHistory)-1].RecordedAt)
	return &analysis.MilestoneSnapshot{Value: last.Value, Completion: eval.Completion}
}

// UpdateProgress 追加一次进度，检测新达成的里程碑，完成度达到 100 时目标转为已完成
func (s *GoalService) UpdateProgress(ctx context.Context, userID, goalID uint, in UpdateProgressInput) (*ProgressResult, error) {
	goal, err := s.find(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status != model.GoalActive {
		return nil, util.ErrGoalNotActive
	}
	kind, err := kindOf(goal.Type)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eval := kind.Evaluate(goal.State(), in.Value, now)

	current := analysis.MilestoneSnapshot{Value: in.Value, Completion: eval.Completion}
	milestones := goal.AnalysisMilestones()
	crossed := analysis.DetectNewMilestones(previousSnapshot(kind, goal), current, milestones)
	updated := analysis.MarkAchieved(milestones, crossed, now)

	byID := make(map[string]analysis.Milestone, len(updated))
	for _, m := range updated {
		byID[m.ID] = m
	}
	achieved := make([]model.GoalMilestone, 0, len(crossed))
	newlyAchieved := make([]analysis.Milestone, 0, len(crossed))
	for _, c := range crossed {
		m := byID[c.ID]
		achieved = append(achieved, model.MilestoneFrom(goal.ID, m))
		newlyAchieved = append(newlyAchieved, m)
	}

	goal.Current = in.Value
	completed := eval.Completion >= 100
	if completed {
		goal.Status = model.GoalCompleted
		goal.CompletedAt = &now
	}

	entry := &model.GoalProgressEntry{
		RecordedAt: now,
		Value:      in.Value,
		Completion: eval.Completion,
		Metrics:    datatypes.NewJSONType(eval.Metrics),
		Notes:      in.Notes,
	}
	if err := s.repo.SaveProgress(ctx, goal, entry, achieved); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("goal_store").Inc()
		return nil, fmt.Errorf("save goal progress: %w", err)
	}

	goal.ProgressHistory = append(goal.ProgressHistory, *entry)
	for i := range goal.Milestones {
		if m, ok := byID[goal.Milestones[i].ID]; ok {
			goal.Milestones[i].Achieved = m.Achieved
			goal.Milestones[i].AchievedAt = m.AchievedAt
		}
	}

	for _, m := range newlyAchieved {
		notify(ctx, s.notifier, &model.Notification{
			UserID:  userID,
			Type:    model.NotifyGoalMilestone,
			Title:   "Milestone reached",
			Message: fmt.Sprintf("%s: %s", goal.Title, m.Name),
			Data: datatypes.JSONMap{
				"goal_id":      goal.ID,
				"milestone_id": m.ID,
				"threshold":    m.Threshold,
			},
		})
	}
	if completed {
		notify(ctx, s.notifier, &model.Notification{
			UserID:  userID,
			Type:    model.NotifyGoalCompleted,
			Title:   "Goal completed",
			Message: fmt.Sprintf("You reached your goal: %s", goal.Title),
			Data:    datatypes.JSONMap{"goal_id": goal.ID},
		})
	}

	return &ProgressResult{
		Goal:          goal,
		Evaluation:    eval,
		NewMilestones: newlyAchieved,
		Completed:     completed,
	}, nil
}

// analyzeGoal 完成度按当前目标值重新计算，目标调整后与 Progress 保持一致
func (s *GoalService) analyzeGoal(goal model.Goal, now time.Time) GoalAnalysis {
	history := goal.History()
	timestamps := make([]time.Time, 0, len(history))
	for _, p := range history {
		timestamps = append(timestamps, p.Timestamp)
	}

	a := GoalAnalysis{
		GoalID:      goal.ID,
		Title:       goal.Title,
		Type:        goal.Type,
		Status:      goal.Status,
		Progress:    analysis.ComputeProgress(goal.StartingPoint, goal.Target, goal.Current),
		Velocity:    analysis.ComputeVelocity(history),
		Consistency: analysis.AnalyzeConsistency(timestamps),
		Projection:  analysis.ProjectCompletion(history, goal.Target, analysis.ProjectionOptions{Now: now, Deadline: goal.Deadline}),
		Milestones:  analysis.AnalyzeMilestones(goal.AnalysisMilestones()),
	}
	if kind, err := kindOf(goal.Type); err == nil {
		a.Completion = kind.Evaluate(goal.State(), goal.Current, now).Completion
	}
	if goal.Status == model.GoalCompleted {
		a.Completion = 100
	}
	return a
}

// AnalyzeGoals goalType 为空时分析全部目标
func (s *GoalService) AnalyzeGoals(ctx context.Context, userID uint, goalType string) (*GoalsAnalysis, error) {
	defer monitoring.ObserveAnalysis("goals", time.Now())

	if goalType != "" {
		if _, err := kindOf(goalType); err != nil {
			return nil, err
		}
	}
	goals, err := s.repo.FindByUser(ctx, userID, goalType, "")
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("goal_store").Inc()
		return nil, fmt.Errorf("load goals: %w", err)
	}

	now := s.now()
	result := &GoalsAnalysis{Goals: make([]GoalAnalysis, 0, len(goals)), Insights: Insights{}}
	completions := make([]float64, 0, len(goals))
	for _, g := range goals {
		a := s.analyzeGoal(g, now)
		result.Goals = append(result.Goals, a)
		completions = append(completions, a.Completion)
	}
	result.OverallProgress = analysis.OverallProgress(completions)

	if len(goals) > 0 && !s.insightsOff.Load() {
		insights, err := s.insights.Generate(ctx, InsightGoals, result.Goals)
		if err != nil {
			monitoring.UpstreamFailures.WithLabelValues("insight_generator").Inc()
			return nil, fmt.Errorf("generate goal insights: %w", err)
		}
		if insights != nil {
			result.Insights = insights
		}
	}
	return result, nil
}

// rescaleThreshold 数值型里程碑按起点到目标的比例换算到新目标
func rescaleThreshold(m analysis.Milestone, start, oldTarget, newTarget float64) analysis.Milestone {
	if m.Metric != analysis.MetricValue || oldTarget == start {
		return m
	}
	ratio := (m.Threshold - start) / (oldTarget - start)
	m.Threshold = start + ratio*(newTarget-start)
	m.Descending = newTarget < start
	return m
}

// AdjustGoal 修改目标值或截止日期，已达成的里程碑保持不变
func (s *GoalService) AdjustGoal(ctx context.Context, userID, goalID uint, in AdjustGoalInput) (*model.Goal, error) {
	goal, err := s.find(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == model.GoalCompleted {
		return nil, util.ErrGoalNotActive
	}

	if in.Title != nil {
		goal.Title = *in.Title
	}
	if in.Deadline != nil {
		deadline, err := s.parseDeadline(*in.Deadline)
		if err != nil {
			return nil, err
		}
		goal.Deadline = deadline
	}

	oldTarget := goal.Target
	if in.Target != nil {
		goal.Target = *in.Target
	}

	kept := make([]model.GoalMilestone, 0, len(goal.Milestones))
	pending := make([]model.GoalMilestone, 0, len(goal.Milestones))
	for _, gm := range goal.Milestones {
		if gm.Achieved {
			kept = append(kept, gm)
			continue
		}
		m := rescaleThreshold(gm.ToMilestone(), goal.StartingPoint, oldTarget, goal.Target)
		pending = append(pending, model.MilestoneFrom(goal.ID, m))
	}

	if err := s.repo.UpdatePlan(ctx, goal, pending); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("goal_store").Inc()
		return nil, fmt.Errorf("adjust goal: %w", err)
	}
	goal.Milestones = append(kept, pending...)
	sort.SliceStable(goal.Milestones, func(i, j int) bool {
		return goal.Milestones[i].Sequence < goal.Milestones[j].Sequence
	})
	return goal, nil
}

// SetStatus 只能在 active、paused、failed 之间切换，已完成的目标不能再修改
func (s *GoalService) SetStatus(ctx context.Context, userID, goalID uint, status model.GoalStatus) (*model.Goal, error) {
	switch status {
	case model.GoalActive, model.GoalPaused, model.GoalFailed:
	default:
		return nil, util.ErrInvalidGoalStatus
	}

	goal, err := s.find(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == model.GoalCompleted {
		return nil, util.ErrInvalidGoalStatus
	}

	goal.Status = status
	if err := s.repo.UpdateStatus(ctx, goal); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("goal_store").Inc()
		return nil, fmt.Errorf("update goal status: %w", err)
	}
	return goal, nil
}
