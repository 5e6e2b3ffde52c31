package repository

import (
	"context"
	"nutritrack_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 每日营养快照
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 同一用户同一天只保留一条快照
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.Progress) error {
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"calorie_intake", "entry_count", "macronutrients", "goals_progress",
			"deficits", "insights", "recommendations", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	// 冲突更新时驱动返回的自增 ID 不可靠，按唯一键重新读取
	stored, err := r.FindByUserAndDate(ctx, p.UserID, p.Date)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (r *ProgressRepository) FindByUserAndDate(ctx context.Context, userID uint, date string) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserAndRange 按日期升序返回 [start, end] 内的快照
func (r *ProgressRepository) FindByUserAndRange(ctx context.Context, userID uint, start, end string) ([]model.Progress, error) {
	var list []model.Progress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date ASC").
		Find(&list).Error
	return list, err
}
