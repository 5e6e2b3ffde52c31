package service

import (
	"context"
	"errors"
	"fmt"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/logger"

	"go.uber.org/zap"
)

type NutrientGoalService struct {
	repo  *repository.NutrientGoalRepository
	cache repository.AnalysisCache
}

func NewNutrientGoalService(repo *repository.NutrientGoalRepository, cache repository.AnalysisCache) *NutrientGoalService {
	return &NutrientGoalService{repo: repo, cache: cache}
}

type SetNutrientGoalInput struct {
	Nutrient    string  `json:"nutrient" binding:"required"`
	DailyTarget float64 `json:"dailyTarget" binding:"required"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
}

// Set 营养素名称按 analysis.NutrientKey 统一，与饮食记录中的键一致
func (s *NutrientGoalService) Set(ctx context.Context, userID uint, in SetNutrientGoalInput) (*model.NutrientGoal, error) {
	name := analysis.NutrientKey(in.Nutrient)
	if name == "" || !(in.DailyTarget > 0) {
		return nil, util.ErrInvalidNutrient
	}

	goal := &model.NutrientGoal{
		UserID:      userID,
		Nutrient:    name,
		DailyTarget: in.DailyTarget,
		Unit:        in.Unit,
		Category:    in.Category,
	}
	if err := s.repo.Upsert(ctx, goal); err != nil {
		return nil, fmt.Errorf("save nutrient goal: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Warn("清除分析缓存失败", zap.Uint("userID", userID), zap.Error(err))
		}
	}
	return goal, nil
}

func (s *NutrientGoalService) List(ctx context.Context, userID uint) ([]model.NutrientGoal, error) {
	goals, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list nutrient goals: %w", err)
	}
	return goals, nil
}
