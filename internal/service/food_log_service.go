package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FoodLogService struct {
	repo  *repository.FoodLogRepository
	cache repository.AnalysisCache
	loc   *time.Location
	now   func() time.Time
}

func NewFoodLogService(repo *repository.FoodLogRepository, cache repository.AnalysisCache, loc *time.Location) *FoodLogService {
	return &FoodLogService{repo: repo, cache: cache, loc: loc, now: time.Now}
}

type CreateFoodLogInput struct {
	LogDate        string                  `json:"logDate"`
	MealType       string                  `json:"mealType"`
	FoodItem       string                  `json:"foodItem" binding:"required,max=255"`
	Quantity       string                  `json:"quantity"`
	Source         string                  `json:"source"`
	Calories       float64                 `json:"calories" binding:"gte=0"`
	Macronutrients analysis.Macronutrients `json:"macronutrients"`
	Micronutrients map[string]float64      `json:"micronutrients"`
	Notes          string                  `json:"notes"`
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (in CreateFoodLogInput) validate() error {
	m := in.Macronutrients
	if !nonNegative(in.Calories) || !nonNegative(m.Proteins) || !nonNegative(m.Carbs) || !nonNegative(m.Fats) {
		return fmt.Errorf("%w: nutrient values must be non-negative", util.ErrInvalidNutrient)
	}
	for name, v := range in.Micronutrients {
		if strings.TrimSpace(name) == "" || !nonNegative(v) {
			return fmt.Errorf("%w: invalid micronutrient %q", util.ErrInvalidNutrient, name)
		}
	}
	return nil
}

// Create 未填写日期时记为今天；未填写餐次时按提交时刻推荐
func (s *FoodLogService) Create(ctx context.Context, userID uint, in CreateFoodLogInput) (*model.FoodLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	logDate := analysis.DateKey(now)
	if in.LogDate != "" {
		d, err := analysis.ParseDate(in.LogDate, s.loc)
		if err != nil {
			return nil, util.ErrInvalidDate
		}
		logDate = analysis.DateKey(d)
	}

	meal := analysis.MealType(strings.ToLower(in.MealType))
	if in.MealType == "" {
		meal = analysis.SuggestionMealWindows.ClassifyTime(now)
	}
	if !meal.Valid() {
		return nil, util.ErrInvalidMealType
	}

	source := model.FoodLogSource(in.Source)
	if source == "" {
		source = model.SourceManual
	}
	if !source.Valid() {
		return nil, util.ErrInvalidSource
	}

	log := &model.FoodLog{
		UserID:         userID,
		LogDate:        logDate,
		MealType:       string(meal),
		FoodItem:       in.FoodItem,
		Quantity:       in.Quantity,
		Source:         source,
		Calories:       in.Calories,
		Macronutrients: model.MacronutrientsMap(in.Macronutrients),
		Micronutrients: model.MicronutrientsMap(in.Micronutrients),
		Notes:          in.Notes,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("create food log: %w", err)
	}

	s.invalidate(ctx, userID)
	return log, nil
}

func (s *FoodLogService) ListByDate(ctx context.Context, userID uint, date time.Time) ([]model.FoodLog, error) {
	logs, err := s.repo.FindByUserAndDate(ctx, userID, analysis.DateKey(date.In(s.loc)))
	if err != nil {
		return nil, fmt.Errorf("list food logs: %w", err)
	}
	return logs, nil
}

// Get 只能读取自己的记录
func (s *FoodLogService) Get(ctx context.Context, userID, id uint) (*model.FoodLog, error) {
	log, err := s.repo.FindByID(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFoodLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food log: %w", err)
	}
	return log, nil
}

func (s *FoodLogService) Delete(ctx context.Context, userID, id uint) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete food log: %w", err)
	}
	if !deleted {
		return util.ErrFoodLogNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

// invalidate 缓存失效失败只会让旧结果多保留一个 TTL
func (s *FoodLogService) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Warn("清除分析缓存失败", zap.Uint("userID", userID), zap.Error(err))
	}
}
