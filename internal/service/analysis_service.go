package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/logger"
	"nutritrack_backend/pkg/monitoring"
	"nutritrack_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalysisService 把饮食记录和营养目标组合成单日、多日和连续性分析
type AnalysisService struct {
	foodLogs      *repository.FoodLogRepository
	nutrientGoals *repository.NutrientGoalRepository
	progress      *repository.ProgressRepository
	cache         repository.AnalysisCache
	insights      InsightGenerator
	loc           *time.Location
	now           func() time.Time

	mu  sync.RWMutex
	cfg config.AnalysisConfig
}

func NewAnalysisService(
	foodLogs *repository.FoodLogRepository,
	nutrientGoals *repository.NutrientGoalRepository,
	progress *repository.ProgressRepository,
	cache repository.AnalysisCache,
	insights InsightGenerator,
	cfg config.AnalysisConfig,
	loc *time.Location,
) *AnalysisService {
	if insights == nil {
		insights = NoopInsightGenerator{}
	}
	if loc == nil {
		loc = time.Local
	}
	if cfg.ParallelDays <= 0 {
		cfg.ParallelDays = 1
	}
	return &AnalysisService{
		foodLogs:      foodLogs,
		nutrientGoals: nutrientGoals,
		progress:      progress,
		cache:         cache,
		insights:      insights,
		loc:           loc,
		now:           time.Now,
		cfg:           cfg,
	}
}

// UpdateConfig 配置热更新时调用
func (s *AnalysisService) UpdateConfig(cfg config.AnalysisConfig) {
	if cfg.ParallelDays <= 0 {
		cfg.ParallelDays = 1
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *AnalysisService) config() config.AnalysisConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Today 按服务时区取当天零点
func (s *AnalysisService) Today() time.Time {
	return analysis.DayStart(s.now().In(s.loc))
}

type DailyAnalysis struct {
	analysis.DailyRecord
	Insights Insights `json:"insights"`
}

type PeriodAnalysis struct {
	StartDate       string                 `json:"startDate"`
	EndDate         string                 `json:"endDate"`
	DailyRecords    []analysis.DailyRecord `json:"dailyLogs"`
	Trends          analysis.PeriodTrends  `json:"trends"`
	TopDeficiencies []string               `json:"topDeficiencies"`
	Insights        Insights               `json:"insights"`
}

func (s *AnalysisService) targets(ctx context.Context, userID uint) ([]analysis.NutrientTarget, error) {
	goals, err := s.nutrientGoals.FindByUser(ctx, userID)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("nutrient_goal_store").Inc()
		return nil, fmt.Errorf("load nutrient goals: %w", err)
	}
	return model.ToTargets(goals), nil
}

func (s *AnalysisService) dailyRecord(ctx context.Context, userID uint, date time.Time) (analysis.DailyRecord, error) {
	day := analysis.DayStart(date.In(s.loc))

	logs, err := s.foodLogs.FindByUserAndDate(ctx, userID, analysis.DateKey(day))
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("food_log_store").Inc()
		return analysis.DailyRecord{}, fmt.Errorf("load food logs: %w", err)
	}
	targets, err := s.targets(ctx, userID)
	if err != nil {
		return analysis.DailyRecord{}, err
	}
	return analysis.BuildDailyRecord(day, model.ToEntries(logs, s.loc), targets, analysis.AnalysisMealWindows), nil
}

// generate 没有任何记录时不调用外部模型
func (s *AnalysisService) generate(ctx context.Context, kind InsightKind, entries int, payload interface{}) (Insights, error) {
	if !s.config().InsightsEnabled || entries == 0 {
		return Insights{}, nil
	}
	insights, err := s.insights.Generate(ctx, kind, payload)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("insight_generator").Inc()
		return nil, fmt.Errorf("generate %s insights: %w", kind, err)
	}
	if insights == nil {
		insights = Insights{}
	}
	return insights, nil
}

// GetDailyAnalysis 单日分析
func (s *AnalysisService) GetDailyAnalysis(ctx context.Context, userID uint, date time.Time) (*DailyAnalysis, error) {
	defer monitoring.ObserveAnalysis("daily", time.Now())

	record, err := s.dailyRecord(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	insights, err := s.generate(ctx, InsightDaily, record.EntryCount, record)
	if err != nil {
		return nil, err
	}
	return &DailyAnalysis{DailyRecord: record, Insights: insights}, nil
}

// SaveDailySnapshot 计算单日分析并按 (用户, 日期) 写入快照
func (s *AnalysisService) SaveDailySnapshot(ctx context.Context, userID uint, date time.Time) (*model.Progress, error) {
	daily, err := s.GetDailyAnalysis(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	snapshot := model.ProgressFromRecord(userID, daily.DailyRecord, daily.Insights, daily.Insights.Recommendations())
	if err := s.progress.Upsert(ctx, &snapshot); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("progress_store").Inc()
		return nil, fmt.Errorf("save progress snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListSnapshots 返回区间内已保存的快照，区间限制与多日分析相同
func (s *AnalysisService) ListSnapshots(ctx context.Context, userID uint, start, end time.Time) ([]model.Progress, error) {
	dates, err := s.validateRange(start, end)
	if err != nil {
		return nil, err
	}
	list, err := s.progress.FindByUserAndRange(ctx, userID, analysis.DateKey(dates[0]), analysis.DateKey(dates[len(dates)-1]))
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("progress_store").Inc()
		return nil, fmt.Errorf("list progress snapshots: %w", err)
	}
	return list, nil
}

func (s *AnalysisService) validateRange(start, end time.Time) ([]time.Time, error) {
	dates, err := analysis.DatesInRange(start.In(s.loc), end.In(s.loc))
	if errors.Is(err, analysis.ErrInvalidRange) {
		return nil, util.ErrInvalidDateRange
	}
	if err != nil {
		return nil, err
	}
	if limit := s.config().MaxRangeDays; limit > 0 && len(dates) > limit {
		return nil, fmt.Errorf("%w: %d days requested, at most %d", util.ErrRangeTooLarge, len(dates), limit)
	}
	return dates, nil
}

// buildRecords 一次查询整个区间，再按日期并行计算，结果按日期顺序放回
func (s *AnalysisService) buildRecords(ctx context.Context, userID uint, dates []time.Time, targets []analysis.NutrientTarget) ([]analysis.DailyRecord, error) {
	first, last := analysis.DateKey(dates[0]), analysis.DateKey(dates[len(dates)-1])
	logs, err := s.foodLogs.FindByUserAndRange(ctx, userID, first, last)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("food_log_store").Inc()
		return nil, fmt.Errorf("load food logs: %w", err)
	}

	byDate := make(map[string][]analysis.FoodLogEntry, len(dates))
	for _, e := range model.ToEntries(logs, s.loc) {
		key := analysis.DateKey(e.LogDate)
		byDate[key] = append(byDate[key], e)
	}

	records := make([]analysis.DailyRecord, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config().ParallelDays)
	for i, d := range dates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = analysis.BuildDailyRecord(d, byDate[analysis.DateKey(d)], targets, analysis.AnalysisMealWindows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// AnalyzePeriod 多日分析，区间内每一天都有一条记录，没有饮食记录的日期补零
func (s *AnalysisService) AnalyzePeriod(ctx context.Context, userID uint, start, end time.Time) (*PeriodAnalysis, error) {
	dates, err := s.validateRange(start, end)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "analysis.period")
	defer span.End()
	span.SetAttributes(tracing.UserAttr(userID), attribute.Int("analysis.days", len(dates)))
	defer monitoring.ObserveAnalysis("period", time.Now())

	startKey, endKey := analysis.DateKey(dates[0]), analysis.DateKey(dates[len(dates)-1])
	cacheKey := repository.CacheKey(util.CachePrefixPeriod, userID, startKey, endKey)

	var cached PeriodAnalysis
	if s.cacheGet(ctx, "period", cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("analysis.cache_hit", true))
		return &cached, nil
	}

	result, err := s.computePeriod(ctx, userID, dates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, result)
	return result, nil
}

func (s *AnalysisService) computePeriod(ctx context.Context, userID uint, dates []time.Time) (*PeriodAnalysis, error) {
	targets, err := s.targets(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.buildRecords(ctx, userID, dates, targets)
	if err != nil {
		return nil, err
	}

	trends := analysis.SummarizePeriod(records, targets)
	top := trends.TopDeficiencies(5)

	insights, err := s.generate(ctx, InsightPeriod, trends.TotalEntries, map[string]interface{}{
		"trends":          trends,
		"topDeficiencies": top,
	})
	if err != nil {
		return nil, err
	}

	return &PeriodAnalysis{
		StartDate:       analysis.DateKey(dates[0]),
		EndDate:         analysis.DateKey(dates[len(dates)-1]),
		DailyRecords:    records,
		Trends:          trends,
		TopDeficiencies: top,
		Insights:        insights,
	}, nil
}

// PeriodTrends 只返回趋势数据，不走缓存也不生成解读
func (s *AnalysisService) PeriodTrends(ctx context.Context, userID uint, start, end time.Time) (analysis.PeriodTrends, error) {
	dates, err := analysis.DatesInRange(start.In(s.loc), end.In(s.loc))
	if err != nil {
		return analysis.PeriodTrends{}, util.ErrInvalidDateRange
	}
	targets, err := s.targets(ctx, userID)
	if err != nil {
		return analysis.PeriodTrends{}, err
	}
	records, err := s.buildRecords(ctx, userID, dates, targets)
	if err != nil {
		return analysis.PeriodTrends{}, err
	}
	return analysis.SummarizePeriod(records, targets), nil
}

// GetStreak 用户全部记录日期的连续性
func (s *AnalysisService) GetStreak(ctx context.Context, userID uint) (*analysis.StreakSummary, error) {
	defer monitoring.ObserveAnalysis("streak", time.Now())

	now := s.now().In(s.loc)
	cacheKey := repository.CacheKey(util.CachePrefixStreak, userID, analysis.DateKey(now))

	var cached analysis.StreakSummary
	if s.cacheGet(ctx, "streak", cacheKey, &cached) {
		return &cached, nil
	}

	keys, err := s.foodLogs.DistinctLogDates(ctx, userID)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("food_log_store").Inc()
		return nil, fmt.Errorf("load log dates: %w", err)
	}
	summary := analysis.AnalyzeStreak(s.parseDates(keys), now)

	s.cacheSet(ctx, cacheKey, summary)
	return &summary, nil
}

// StreakBetween 只统计 [start, end] 内的记录，asOf 决定当前连续天数是否仍然有效
func (s *AnalysisService) StreakBetween(ctx context.Context, userID uint, start, end, asOf time.Time) (analysis.StreakSummary, int, error) {
	startKey, endKey := analysis.DateKey(start.In(s.loc)), analysis.DateKey(end.In(s.loc))
	logs, err := s.foodLogs.FindByUserAndRange(ctx, userID, startKey, endKey)
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("food_log_store").Inc()
		return analysis.StreakSummary{}, 0, fmt.Errorf("load food logs: %w", err)
	}

	keys := make([]string, 0, len(logs))
	for _, l := range logs {
		keys = append(keys, l.LogDate)
	}
	return analysis.AnalyzeStreak(s.parseDates(keys), asOf.In(s.loc)), len(logs), nil
}

func (s *AnalysisService) parseDates(keys []string) []time.Time {
	timestamps := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := analysis.ParseDate(k, s.loc)
		if err != nil {
			logger.Log.Warn("忽略无法解析的记录日期", zap.String("logDate", k))
			continue
		}
		timestamps = append(timestamps, d)
	}
	return timestamps
}

// cacheGet 缓存出错按未命中处理
func (s *AnalysisService) cacheGet(ctx context.Context, kind, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Log.Warn("读取分析缓存失败", zap.String("key", key), zap.Error(err))
		ok = false
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	monitoring.AnalysisCacheResults.WithLabelValues(kind, result).Inc()
	return ok
}

func (s *AnalysisService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.config().CacheTTL()); err != nil {
		logger.Log.Warn("写入分析缓存失败", zap.String("key", key), zap.Error(err))
	}
}
