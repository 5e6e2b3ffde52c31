package repository

import (
	"context"
	"nutritrack_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NutrientGoalRepository struct {
	DB *gorm.DB
}

func NewNutrientGoalRepository(db *gorm.DB) *NutrientGoalRepository {
	return &NutrientGoalRepository{DB: db}
}

// Upsert 按 (user_id, nutrient) 写入或更新目标
func (r *NutrientGoalRepository) Upsert(ctx context.Context, goal *model.NutrientGoal) error {
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "nutrient"}},
		DoUpdates: clause.AssignmentColumns([]string{"daily_target", "unit", "category", "updated_at"}),
	}).Create(goal).Error
	if err != nil {
		return err
	}
	// 冲突更新时驱动返回的自增 ID 不可靠，按唯一键重新读取
	var stored model.NutrientGoal
	if err := db.Where("user_id = ? AND nutrient = ?", goal.UserID, goal.Nutrient).First(&stored).Error; err != nil {
		return err
	}
	*goal = stored
	return nil
}

func (r *NutrientGoalRepository) FindByUser(ctx context.Context, userID uint) ([]model.NutrientGoal, error) {
	var goals []model.NutrientGoal
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("nutrient").Find(&goals).Error
	return goals, err
}
