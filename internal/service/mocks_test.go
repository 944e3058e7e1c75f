package service

import (
	"context"
	"errors"
	"sync"

	"bloodalert/internal/models"
)

var errBoom = errors.New("boom")

type fakeNotificationSource struct {
	mu        sync.Mutex
	list      *models.NotificationList
	listErr   error
	writeErr  error
	markCalls []string
	deleted   []string
	allCalls  int
	// entered is closed when ListNotifications starts; block is then
	// received from before it returns.
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeNotificationSource) ListNotifications(ctx context.Context, userID string) (*models.NotificationList, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	cp := *f.list
	cp.Data = append([]models.Notification(nil), f.list.Data...)
	return &cp, nil
}

func (f *fakeNotificationSource) MarkNotificationRead(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, id)
	return f.writeErr
}

func (f *fakeNotificationSource) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	return f.writeErr
}

func (f *fakeNotificationSource) DeleteNotification(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.writeErr
}

type fakeDashboardSource struct {
	summary   *models.Summary
	requests  []models.BloodRequest
	donations []models.Donation
	users     []models.User
	failOn    string
}

func (f *fakeDashboardSource) fail(name string) error {
	if f.failOn == name {
		return errBoom
	}
	return nil
}

func (f *fakeDashboardSource) Summary(ctx context.Context) (*models.Summary, error) {
	if err := f.fail("summary"); err != nil {
		return nil, err
	}
	return f.summary, nil
}

func (f *fakeDashboardSource) ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error) {
	return f.requests, f.fail("requests")
}

func (f *fakeDashboardSource) ListDonations(ctx context.Context) ([]models.Donation, error) {
	return f.donations, f.fail("donations")
}

func (f *fakeDashboardSource) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.users, f.fail("users")
}

// broadcast records one delivery; room is "user:<id>" or "*" for the
// per-user and everyone fan-outs.
type broadcast struct {
	room    string
	payload interface{}
}

type fakeHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *fakeHub) record(room string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, broadcast{room, payload})
}

func (h *fakeHub) BroadcastRoom(room string, payload interface{})     { h.record(room, payload) }
func (h *fakeHub) BroadcastToUser(userID string, payload interface{}) { h.record("user:"+userID, payload) }
func (h *fakeHub) BroadcastAll(payload interface{})                   { h.record("*", payload) }

type fakePusher struct {
	tokens []string
	single []string
	err    error
}

func (p *fakePusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return nil
	}
	p.single = append(p.single, token)
	return p.err
}

func (p *fakePusher) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	p.tokens = append(p.tokens, tokens...)
	if p.err != nil {
		return len(tokens), p.err
	}
	return 0, nil
}
