package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/inbox"
	"bloodalert/internal/models"
)

// NotificationSource is the collaborator a NotificationCenter reads from and
// writes through. Both the store adapter and pkg/apiclient satisfy it.
type NotificationSource interface {
	ListNotifications(ctx context.Context, userID string) (*models.NotificationList, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
}

// NotificationCenter holds one user's notification list. unread is kept
// consistent with the list by the inbox.
type NotificationCenter struct {
	src          NotificationSource
	userID       string
	demoFallback bool
	now          func() time.Time

	mu     sync.Mutex
	gen    uint64
	closed bool
	list   inbox.List[models.Notification]
}

type CenterOption func(*NotificationCenter)

// WithDemoFallback substitutes synthetic notifications when loading fails.
func WithDemoFallback(on bool) CenterOption {
	return func(c *NotificationCenter) { c.demoFallback = on }
}

func WithClock(now func() time.Time) CenterOption {
	return func(c *NotificationCenter) { c.now = now }
}

func NewNotificationCenter(src NotificationSource, userID string, opts ...CenterOption) *NotificationCenter {
	c := &NotificationCenter{src: src, userID: userID, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *NotificationCenter) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCenterClosed
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	res, err := c.src.ListNotifications(ctx, c.userID)
	if err == nil && res == nil {
		err = fmt.Errorf("empty notification response")
	}

	var items []models.Notification
	switch {
	case err == nil:
		items = res.Data
	case c.demoFallback:
		log.Printf("[NOTIF] load for user %s failed, using demo notifications: %v", c.userID, err)
		items = demoNotifications(c.now())
	default:
		log.Printf("[NOTIF] load for user %s failed: %v", c.userID, err)
		return fmt.Errorf("load notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return nil
	}
	c.list.Replace(toEntries(items))
	return nil
}

// Refresh re-runs the initial fetch.
func (c *NotificationCenter) Refresh(ctx context.Context) error { return c.Load(ctx) }

func (c *NotificationCenter) MarkAsRead(ctx context.Context, id string) error {
	if _, ok := c.list.Get(id); !ok {
		return nil
	}
	if err := c.src.MarkNotificationRead(ctx, c.userID, id); err != nil {
		log.Printf("[NOTIF] mark %s read: %v", id, err)
		return fmt.Errorf("mark notification read: %w", err)
	}
	c.list.MarkRead(id)
	return nil
}

func (c *NotificationCenter) MarkAllAsRead(ctx context.Context) error {
	if err := c.src.MarkAllNotificationsRead(ctx, c.userID); err != nil {
		log.Printf("[NOTIF] mark all read for user %s: %v", c.userID, err)
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	c.list.MarkAllRead()
	return nil
}

func (c *NotificationCenter) Delete(ctx context.Context, id string) error {
	if err := c.src.DeleteNotification(ctx, c.userID, id); err != nil {
		log.Printf("[NOTIF] delete %s: %v", id, err)
		return fmt.Errorf("delete notification: %w", err)
	}
	c.list.Remove(id)
	return nil
}

// Notifications returns a snapshot, newest first as delivered.
func (c *NotificationCenter) Notifications() []models.Notification {
	entries := c.list.Entries()
	out := make([]models.Notification, len(entries))
	for i, e := range entries {
		n := e.Value
		n.Read = e.Read
		out[i] = n
	}
	return out
}

func (c *NotificationCenter) UnreadCount() int { return c.list.UnreadCount() }

// Close discards any refresh still in flight.
func (c *NotificationCenter) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func toEntries(items []models.Notification) []inbox.Entry[models.Notification] {
	entries := make([]inbox.Entry[models.Notification], len(items))
	for i, n := range items {
		entries[i] = inbox.Entry[models.Notification]{Key: n.ID, Read: n.Read, Value: n}
	}
	return entries
}

func demoNotifications(now time.Time) []models.Notification {
	return []models.Notification{
		{
			ID:        "demo-1",
			Title:     "Urgent: O- Blood Needed",
			Message:   "Korle Bu Teaching Hospital urgently needs O- blood for an emergency surgery.",
			Type:      domain.NotificationUrgent,
			Icon:      "exclamation-triangle",
			CreatedAt: now.Add(-30 * time.Minute),
			IsGlobal:  true,
		},
		{
			ID:        "demo-2",
			Title:     "Blood Drive This Weekend",
			Message:   "Join our community blood drive this Saturday at the Accra Mall.",
			Type:      domain.NotificationInfo,
			Icon:      "calendar-event",
			CreatedAt: now.Add(-2 * time.Hour),
			IsGlobal:  true,
		},
		{
			ID:        "demo-3",
			Title:     "Thank You for Donating",
			Message:   "Your recent donation helped save up to three lives.",
			Type:      domain.NotificationSuccess,
			Icon:      "heart",
			Read:      true,
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
}
