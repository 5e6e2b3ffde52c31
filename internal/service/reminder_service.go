package service

import (
	"context"
	"fmt"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/pkg/monitoring"

	"gorm.io/datatypes"
)

type ReminderService struct {
	foodLogs *repository.FoodLogRepository
	notifier Notifier
	loc      *time.Location
}

func NewReminderService(foodLogs *repository.FoodLogRepository, notifier Notifier, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{foodLogs: foodLogs, notifier: notifier, loc: loc}
}

// alreadyLogged 按分析时段归类后该餐已有记录，或者记录本身标明了该餐次
func alreadyLogged(entries []analysis.FoodLogEntry, meal analysis.MealType) bool {
	if analysis.ClassifyByTime(entries, analysis.AnalysisMealWindows).Has(meal) {
		return true
	}
	for _, e := range entries {
		if e.MealType == meal {
			return true
		}
	}
	return false
}

// MaybeRemind 在正餐时段内且当天该餐还没有记录时创建提醒，不需要提醒时返回 nil
func (s *ReminderService) MaybeRemind(ctx context.Context, userID uint, at time.Time) (*model.Notification, error) {
	local := at.In(s.loc)
	meal := analysis.ReminderMealWindows.ClassifyTime(local)
	if meal == analysis.Snack {
		return nil, nil
	}

	logs, err := s.foodLogs.FindByUserAndDate(ctx, userID, analysis.DateKey(local))
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues("food_log_store").Inc()
		return nil, fmt.Errorf("load food logs: %w", err)
	}
	if alreadyLogged(model.ToEntries(logs, s.loc), meal) {
		return nil, nil
	}

	n := &model.Notification{
		UserID:  userID,
		Type:    model.NotifyMealReminder,
		Title:   fmt.Sprintf("Time for %s", meal),
		Message: fmt.Sprintf("You have not logged %s yet today.", meal),
		Data: datatypes.JSONMap{
			"meal_type": string(meal),
			"action":    "log_meal",
			"deep_link": fmt.Sprintf("/food-logs/new?mealType=%s", meal),
		},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		return nil, fmt.Errorf("send meal reminder: %w", err)
	}
	return n, nil
}
