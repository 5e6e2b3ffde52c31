package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/monitoring"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxChallengeDays = 365

// challengeThresholds 完成度达到这些值时各通知一次
var challengeThresholds = []float64{25, 50, 75, 100}

// challengeMetricKeys 每种挑战可以设置目标的指标
var challengeMetricKeys = map[analysis.ChallengeType][]string{
	analysis.ChallengeNutrition:     {"nutrient_goals_met", "meal_logging_consistency", "balanced_meals_percentage", "calories_adherence"},
	analysis.ChallengeBalancedMeals: {"balanced_meals_percentage", "logged_days"},
	analysis.ChallengeLoggingStreak: {"current_streak", "longest_streak", "total_logs", "consistency_score"},
}

// ChallengeAnalyzer 挑战进度所需的趋势与连续性数据
type ChallengeAnalyzer interface {
	PeriodTrends(ctx context.Context, userID uint, start, end time.Time) (analysis.PeriodTrends, error)
	StreakBetween(ctx context.Context, userID uint, start, end, asOf time.Time) (analysis.StreakSummary, int, error)
}

type ChallengeService struct {
	repo     *repository.ChallengeRepository
	analyzer ChallengeAnalyzer
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewChallengeService(repo *repository.ChallengeRepository, analyzer ChallengeAnalyzer, notifier Notifier, loc *time.Location) *ChallengeService {
	if loc == nil {
		loc = time.Local
	}
	return &ChallengeService{repo: repo, analyzer: analyzer, notifier: notifier, loc: loc, now: time.Now}
}

type CreateChallengeInput struct {
	Title        string             `json:"title" binding:"required,max=255"`
	Description  string             `json:"description"`
	Type         string             `json:"type" binding:"required"`
	Targets      map[string]float64 `json:"targets"`
	StartDate    string             `json:"startDate"`
	DurationDays int                `json:"durationDays"`
}

type LeaderboardEntry struct {
	Rank        int                       `json:"rank"`
	UserID      uint                      `json:"userId"`
	Completion  float64                   `json:"completion"`
	Status      model.ParticipationStatus `json:"status"`
	CompletedAt *time.Time                `json:"completedAt,omitempty"`
}

func (in CreateChallengeInput) validate() error {
	t := analysis.ChallengeType(in.Type)
	if !t.Valid() || in.DurationDays < 1 || in.DurationDays > maxChallengeDays {
		return util.ErrInvalidChallenge
	}

	allowed := map[string]bool{}
	for _, k := range challengeMetricKeys[t] {
		allowed[k] = true
	}
	positive := 0
	for k, v := range in.Targets {
		if !allowed[k] || v < 0 {
			return fmt.Errorf("%w: unknown or negative target %q", util.ErrInvalidChallenge, k)
		}
		if v > 0 {
			positive++
		}
	}
	if positive == 0 {
		return util.ErrInvalidChallenge
	}
	return nil
}

func (s *ChallengeService) today() time.Time {
	return analysis.DayStart(s.now().In(s.loc))
}

// Create 未填写开始日期时从今天开始
func (s *ChallengeService) Create(ctx context.Context, creatorID uint, in CreateChallengeInput) (*model.Challenge, error) {
	in.Type = strings.ToLower(in.Type)
	if err := in.validate(); err != nil {
		return nil, err
	}

	start := s.today()
	if in.StartDate != "" {
		d, err := analysis.ParseDate(in.StartDate, s.loc)
		if err != nil {
			return nil, util.ErrInvalidDate
		}
		start = d
	}

	c := &model.Challenge{
		CreatorID:    creatorID,
		Title:        in.Title,
		Description:  in.Description,
		Type:         in.Type,
		Targets:      datatypes.NewJSONType(in.Targets),
		StartDate:    analysis.DateKey(start),
		DurationDays: in.DurationDays,
		Status:       model.ChallengeActive,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return c, nil
}

func (s *ChallengeService) find(ctx context.Context, challengeID uint) (*model.Challenge, error) {
	c, err := s.repo.FindByID(ctx, challengeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrChallengeNotFound
	}
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("challenge_store").Inc()
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	return c, nil
}

func (s *ChallengeService) Join(ctx context.Context, userID, challengeID uint) (*model.UserChallenge, error) {
	c, err := s.find(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	_, end, err := c.Window(s.loc)
	if err != nil {
		return nil, fmt.Errorf("challenge %d has a corrupt start date: %w", c.ID, err)
	}
	if c.Status == model.ChallengeClosed || s.today().After(end) {
		return nil, util.ErrChallengeClosed
	}

	if _, err := s.repo.FindParticipation(ctx, challengeID, userID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load participation: %w", err)
	}

	uc := &model.UserChallenge{
		ChallengeID:       challengeID,
		UserID:            userID,
		Metrics:           datatypes.NewJSONType(map[string]float64{}),
		MilestonesReached: datatypes.NewJSONType([]float64{}),
		Status:            model.ParticipationJoined,
	}
	if err := s.repo.CreateParticipation(ctx, uc); err != nil {
		return nil, fmt.Errorf("join challenge: %w", err)
	}
	return uc, nil
}

func (s *ChallengeService) metrics(ctx context.Context, userID uint, c *model.Challenge, start, end time.Time) (map[string]float64, error) {
	switch c.ChallengeType() {
	case analysis.ChallengeLoggingStreak:
		streak, total, err := s.analyzer.StreakBetween(ctx, userID, start, end, end)
		if err != nil {
			return nil, err
		}
		return analysis.StreakChallengeMetrics(streak, total), nil
	case analysis.ChallengeNutrition:
		trends, err := s.analyzer.PeriodTrends(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		return analysis.NutritionChallengeMetrics(trends), nil
	case analysis.ChallengeBalancedMeals:
		trends, err := s.analyzer.PeriodTrends(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		return analysis.BalancedMealsChallengeMetrics(trends), nil
	}
	return nil, util.ErrInvalidChallenge
}

// TrackProgress 统计截至今天的挑战指标；完成度跨过 25/50/75/100 时各通知一次，达到 100 即完成
func (s *ChallengeService) TrackProgress(ctx context.Context, userID, challengeID uint) (*model.UserChallenge, error) {
	defer monitoring.ObserveAnalysis("challenge", time.Now())

	c, err := s.find(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	uc, err := s.repo.FindParticipation(ctx, challengeID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("load participation: %w", err)
	}
	if uc.Status == model.ParticipationCompleted {
		return uc, nil
	}

	start, end, err := c.Window(s.loc)
	if err != nil {
		return nil, fmt.Errorf("challenge %d has a corrupt start date: %w", c.ID, err)
	}
	if today := s.today(); today.Before(end) {
		end = today
	}
	if end.Before(start) {
		return uc, nil
	}

	metrics, err := s.metrics(ctx, userID, c, start, end)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("challenge_analysis").Inc()
		return nil, fmt.Errorf("compute challenge metrics: %w", err)
	}
	completion := analysis.ChallengeCompletion(metrics, c.Targets.Data())

	reached := append([]float64{}, uc.MilestonesReached.Data()...)
	var crossed []float64
	for _, t := range challengeThresholds {
		if completion >= t && !uc.ReachedThreshold(t) {
			crossed = append(crossed, t)
			reached = append(reached, t)
		}
	}

	now := s.now()
	uc.Completion = completion
	uc.Metrics = datatypes.NewJSONType(metrics)
	uc.MilestonesReached = datatypes.NewJSONType(reached)
	uc.LastTrackedAt = &now
	if completion >= 100 {
		uc.Status = model.ParticipationCompleted
		uc.CompletedAt = &now
	}
	if err := s.repo.SaveParticipation(ctx, uc); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("challenge_store").Inc()
		return nil, fmt.Errorf("save participation: %w", err)
	}

	for _, t := range crossed {
		n := &model.Notification{
			UserID:  userID,
			Type:    model.NotifyChallengeMilestone,
			Title:   "Challenge milestone",
			Message: fmt.Sprintf("%s: %.0f%% complete", c.Title, t),
			Data:    datatypes.JSONMap{"challenge_id": c.ID, "threshold": t},
		}
		if t >= 100 {
			n.Type = model.NotifyChallengeCompleted
			n.Title = "Challenge completed"
			n.Message = fmt.Sprintf("You completed the challenge: %s", c.Title)
		}
		notify(ctx, s.notifier, n)
	}
	return uc, nil
}

// Leaderboard 名次从 1 开始
func (s *ChallengeService) Leaderboard(ctx context.Context, challengeID uint, limit int) ([]LeaderboardEntry, error) {
	if _, err := s.find(ctx, challengeID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := s.repo.Leaderboard(ctx, challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	board := make([]LeaderboardEntry, 0, len(list))
	for i, uc := range list {
		board = append(board, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      uc.UserID,
			Completion:  uc.Completion,
			Status:      uc.Status,
			CompletedAt: uc.CompletedAt,
		})
	}
	return board, nil
}
