package service

import (
	"context"
	"errors"

	"bloodalert/internal/formatter"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"
)

var ErrCenterClosed = errors.New("notification center closed")

// NotificationService serves notification lists from the store and adapts the
// store to NotificationSource for in-process centers.
type NotificationService struct {
	repo  repository.Notifications
	limit int
}

var _ NotificationSource = (*NotificationService)(nil)

func NewNotificationService(repo repository.Notifications, limit int) *NotificationService {
	return &NotificationService{repo: repo, limit: limit}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID string) (*models.NotificationList, error) {
	items, err := s.repo.ListNotifications(ctx, userID, s.limit)
	if err != nil {
		return nil, err
	}
	unread := 0
	for i := range items {
		if items[i].Icon == "" {
			items[i].Icon = formatter.TypeIcon(items[i].Type)
		}
		if !items[i].Read {
			unread++
		}
	}
	if s.limit > 0 && len(items) >= s.limit {
		// The page is capped, so unread rows past it are missing from the tally.
		n, err := s.repo.CountUnread(ctx, userID)
		if err != nil {
			return nil, err
		}
		unread = int(n)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &models.NotificationList{Success: true, Data: items, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id string) error {
	return s.repo.DeleteNotification(ctx, userID, id)
}

// Notify persists a notification addressed to userID, or to everyone when userID is empty.
func (s *NotificationService) Notify(ctx context.Context, userID, notifType, title, message string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     notifType,
		Icon:     formatter.TypeIcon(notifType),
		IsGlobal: userID == "",
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
