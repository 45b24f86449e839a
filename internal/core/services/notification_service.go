package services

import (
	"context"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
)

// NotificationService serves the member notification inbox
type NotificationService struct {
	notifRepo repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List returns a member's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	return s.notifRepo.ListByUser(ctx, userID, unreadOnly, offset, limit)
}

// MarkRead marks one notification as read. Scoped to the owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.notifRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of a member as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

// CountUnread returns the unread badge count
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
