package repository

import (
	"context"
	"nutritrack_backend/internal/model"

	"gorm.io/gorm"
)

// GoalRepository 处理目标、里程碑与进度历史的数据访问
type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

func preloadGoal(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("ProgressHistory", func(db *gorm.DB) *gorm.DB { return db.Order("recorded_at ASC, id ASC") })
}

// Create 目标与里程碑一起写入
func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(goal).Error
	})
}

// FindByID 只返回属于该用户的目标
func (r *GoalRepository) FindByID(ctx context.Context, userID, id uint) (*model.Goal, error) {
	var goal model.Goal
	err := preloadGoal(r.DB.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// FindByUser goalType 和 status 为空时不过滤
func (r *GoalRepository) FindByUser(ctx context.Context, userID uint, goalType string, status model.GoalStatus) ([]model.Goal, error) {
	var goals []model.Goal
	query := preloadGoal(r.DB.WithContext(ctx)).Where("user_id = ?", userID)
	if goalType != "" {
		query = query.Where("type = ?", goalType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at ASC").Find(&goals).Error
	return goals, err
}

// SaveProgress 在一个事务里追加进度、更新目标状态和里程碑
func (r *GoalRepository) SaveProgress(ctx context.Context, goal *model.Goal, entry *model.GoalProgressEntry, achieved []model.GoalMilestone) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry.GoalID = goal.ID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Goal{}).Where("id = ?", goal.ID).Updates(map[string]interface{}{
			"current":      goal.Current,
			"status":       goal.Status,
			"completed_at": goal.CompletedAt,
		}).Error; err != nil {
			return err
		}

		for _, m := range achieved {
			if err := tx.Model(&model.GoalMilestone{}).
				Where("id = ? AND achieved = ?", m.ID, false).
				Updates(map[string]interface{}{
					"achieved":    true,
					"achieved_at": m.AchievedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePlan 更新目标值和截止日期，并替换未达成的里程碑
func (r *GoalRepository) UpdatePlan(ctx context.Context, goal *model.Goal, pending []model.GoalMilestone) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Goal{}).Where("id = ?", goal.ID).Updates(map[string]interface{}{
			"target":   goal.Target,
			"deadline": goal.Deadline,
			"title":    goal.Title,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("goal_id = ? AND achieved = ?", goal.ID, false).
			Delete(&model.GoalMilestone{}).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		return tx.Create(&pending).Error
	})
}

func (r *GoalRepository) UpdateStatus(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Model(&model.Goal{}).Where("id = ?", goal.ID).Updates(map[string]interface{}{
		"status":       goal.Status,
		"completed_at": goal.CompletedAt,
	}).Error
}
