package repository

import (
	"context"
	"nutritrack_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *ChallengeRepository) FindByID(ctx context.Context, id uint) (*model.Challenge, error) {
	var c model.Challenge
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChallengeRepository) CreateParticipation(ctx context.Context, uc *model.UserChallenge) error {
	return r.DB.WithContext(ctx).Create(uc).Error
}

func (r *ChallengeRepository) FindParticipation(ctx context.Context, challengeID, userID uint) (*model.UserChallenge, error) {
	var uc model.UserChallenge
	err := r.DB.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *ChallengeRepository) SaveParticipation(ctx context.Context, uc *model.UserChallenge) error {
	return r.DB.WithContext(ctx).Save(uc).Error
}

// Leaderboard 按完成度降序，完成度相同时先完成的在前
func (r *ChallengeRepository) Leaderboard(ctx context.Context, challengeID uint, limit int) ([]model.UserChallenge, error) {
	var list []model.UserChallenge
	query := r.DB.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("completion DESC").
		Order("updated_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}
