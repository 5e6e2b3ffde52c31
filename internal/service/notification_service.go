package service

import (
	"context"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/pkg/logger"
	"nutritrack_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Notifier 发送用户通知，调用方不关心结果
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	monitoring.NotificationsSent.WithLabelValues(string(n.Type)).Inc()
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.FindByUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	return s.repo.MarkRead(ctx, userID, ids)
}

// notify 通知失败只记录日志，不影响主流程
func notify(ctx context.Context, notifier Notifier, n *model.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		monitoring.UpstreamFailures.WithLabelValues("notifier").Inc()
		logger.Log.Warn("发送通知失败",
			zap.Uint("userID", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}
