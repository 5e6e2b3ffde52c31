package repository

import (
	"context"
	"nutritrack_backend/internal/model"

	"gorm.io/gorm"
)

type FoodLogRepository struct {
	DB *gorm.DB
}

func NewFoodLogRepository(db *gorm.DB) *FoodLogRepository {
	return &FoodLogRepository{DB: db}
}

// Create 创建饮食记录
func (r *FoodLogRepository) Create(ctx context.Context, log *model.FoodLog) error {
	return r.DB.WithContext(ctx).Create(log).Error
}

// Delete 删除用户自己的记录，返回是否有记录被删除
func (r *FoodLogRepository) Delete(ctx context.Context, userID, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.FoodLog{})
	return res.RowsAffected > 0, res.Error
}

func (r *FoodLogRepository) FindByID(ctx context.Context, userID, id uint) (*model.FoodLog, error) {
	var log model.FoodLog
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// FindByUserAndDate 按创建时间升序返回某天的记录
func (r *FoodLogRepository) FindByUserAndDate(ctx context.Context, userID uint, date string) ([]model.FoodLog, error) {
	var logs []model.FoodLog
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND log_date = ?", userID, date).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// FindByUserAndRange 返回 [start, end] 内的记录，日期均为 yyyy-mm-dd
func (r *FoodLogRepository) FindByUserAndRange(ctx context.Context, userID uint, start, end string) ([]model.FoodLog, error) {
	var logs []model.FoodLog
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, start, end).
		Order("log_date ASC, created_at ASC").
		Find(&logs).Error
	return logs, err
}

// DistinctLogDates 用户有记录的日期，升序
func (r *FoodLogRepository) DistinctLogDates(ctx context.Context, userID uint) ([]string, error) {
	var dates []string
	err := r.DB.WithContext(ctx).Model(&model.FoodLog{}).
		Where("user_id = ?", userID).
		Distinct("log_date").
		Order("log_date ASC").
		Pluck("log_date", &dates).Error
	return dates, err
}

