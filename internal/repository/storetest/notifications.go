// Package storetest holds behaviour checks shared by every Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloodalert/internal/models"
	"bloodalert/internal/repository"
)

// NotificationStore is the slice of repository.Store the checks drive.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
}

// Notifications runs the visibility and per-user state checks against s.
// prefix keeps user ids apart when backends share state between runs.
func Notifications(t *testing.T, s NotificationStore, prefix string) {
	t.Helper()
	ctx := context.Background()
	a, b, c := prefix+"a", prefix+"b", prefix+"c"
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)

	own := &models.Notification{UserID: a, Title: "own", Type: "info", CreatedAt: base}
	other := &models.Notification{UserID: b, Title: "other", Type: "info", CreatedAt: base.Add(time.Minute)}
	drive := &models.Notification{IsGlobal: true, Title: "drive", Type: "info", CreatedAt: base.Add(2 * time.Minute)}
	for _, n := range []*models.Notification{own, other, drive} {
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatalf("create %s: %v", n.Title, err)
		}
		if n.ID == "" {
			t.Fatalf("create %s: no id assigned", n.Title)
		}
	}

	list, err := s.ListNotifications(ctx, a, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != drive.ID || list[1].ID != own.ID {
		t.Fatalf("expected global then own for a, got %+v", list)
	}

	if err := s.MarkNotificationRead(ctx, a, other.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound reading another user's row, got %v", err)
	}
	if err := s.DeleteNotification(ctx, a, other.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting another user's row, got %v", err)
	}

	if err := s.MarkNotificationRead(ctx, a, drive.ID); err != nil {
		t.Fatalf("mark global read: %v", err)
	}
	if err := s.MarkNotificationRead(ctx, a, drive.ID); err != nil {
		t.Fatalf("mark global read twice: %v", err)
	}
	unread(t, s, a, 1)
	unread(t, s, b, 2)
	if got := find(t, s, a, drive.ID); got == nil || !got.Read {
		t.Errorf("expected a to see the global read, got %+v", got)
	}
	if got := find(t, s, b, drive.ID); got == nil || got.Read {
		t.Errorf("expected b to see the global unread, got %+v", got)
	}

	if err := s.DeleteNotification(ctx, a, drive.ID); err != nil {
		t.Fatalf("hide global: %v", err)
	}
	if got := find(t, s, a, drive.ID); got != nil {
		t.Errorf("expected global hidden from a, got %+v", got)
	}
	if err := s.MarkNotificationRead(ctx, a, drive.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on a hidden global, got %v", err)
	}
	if got := find(t, s, b, drive.ID); got == nil {
		t.Error("expected b to keep the global after a hid it")
	}

	if err := s.MarkAllNotificationsRead(ctx, b); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	unread(t, s, b, 0)
	unread(t, s, a, 1)
	unread(t, s, c, 1)

	if err := s.DeleteNotification(ctx, a, own.ID); err != nil {
		t.Fatalf("delete own: %v", err)
	}
	if err := s.DeleteNotification(ctx, a, own.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	unread(t, s, a, 0)
}

func unread(t *testing.T, s NotificationStore, userID string, want int64) {
	t.Helper()
	n, err := s.CountUnread(context.Background(), userID)
	if err != nil {
		t.Fatalf("count unread %s: %v", userID, err)
	}
	if n != want {
		t.Errorf("unread for %s = %d, want %d", userID, n, want)
	}
}

func find(t *testing.T, s NotificationStore, userID, id string) *models.Notification {
	t.Helper()
	list, err := s.ListNotifications(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("list %s: %v", userID, err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
