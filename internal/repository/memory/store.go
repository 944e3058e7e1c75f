// Package memory is an in-process Store used for local development and tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodalert/internal/models"
	"bloodalert/internal/repository"

	"github.com/google/uuid"
)

var ErrDuplicateEmail = errors.New("email already exists")

type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	donations     map[string]models.Donation
	requests      map[string]models.BloodRequest
	campaigns     map[string]models.BloodCampaign
	notifications map[string]models.Notification
	now           func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         make(map[string]models.User),
		donations:     make(map[string]models.Donation),
		requests:      make(map[string]models.BloodRequest),
		campaigns:     make(map[string]models.BloodCampaign),
		notifications: make(map[string]models.Notification),
		now:           time.Now,
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = s.now()
	}
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	s.stamp(&u.ID, &u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *Store) ListUsersByBloodGroup(_ context.Context, bloodGroup string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.User
	for _, u := range s.users {
		if u.BloodGroup == bloodGroup {
			list = append(list, u)
		}
	}
	return list, nil
}

func (s *Store) UpdateFCMToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FCMToken = token
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// Donations

func (s *Store) CreateDonation(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&d.ID, &d.CreatedAt)
	s.donations[d.ID] = *d
	return nil
}

func (s *Store) ListDonations(_ context.Context) ([]models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// Blood requests

func (s *Store) CreateBloodRequest(_ context.Context, r *models.BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&r.ID, &r.CreatedAt)
	s.requests[r.ID] = *r
	return nil
}

func (s *Store) GetBloodRequest(_ context.Context, id string) (*models.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListBloodRequests(_ context.Context) ([]models.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.BloodRequest, 0, len(s.requests))
	for _, r := range s.requests {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *Store) UpdateBloodRequestStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	s.requests[id] = r
	return nil
}

// Campaigns

func (s *Store) CreateCampaign(_ context.Context, c *models.BloodCampaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt)
	s.campaigns[c.ID] = *c
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (*models.BloodCampaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCampaigns(_ context.Context) ([]models.BloodCampaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.BloodCampaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Active != list[j].Active {
			return list[i].Active
		}
		return list[i].StartsAt.After(list[j].StartsAt)
	})
	return list, nil
}

func (s *Store) UpdateCampaignBanner(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.BannerURL = url
	s.campaigns[id] = c
	return nil
}

// Notifications

func visible(n models.Notification, userID string) bool {
	if n.IsGlobal {
		return !n.HiddenFrom(userID)
	}
	return n.UserID == userID
}

func unread(n models.Notification, userID string) bool {
	if n.IsGlobal {
		return !slices.Contains(n.ReadBy, userID)
	}
	return !n.Read
}

// markRead records the read for userID only when n is global.
func markRead(n models.Notification, userID string) models.Notification {
	if !n.IsGlobal {
		n.Read = true
	} else if !slices.Contains(n.ReadBy, userID) {
		n.ReadBy = append(slices.Clone(n.ReadBy), userID)
	}
	return n
}

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&n.ID, &n.CreatedAt)
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Notification
	for _, n := range s.notifications {
		if visible(n, userID) {
			n.ViewFor(userID)
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, v := range s.notifications {
		if visible(v, userID) && unread(v, userID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || !visible(n, userID) {
		return repository.ErrNotFound
	}
	s.notifications[id] = markRead(n, userID)
	return nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if visible(n, userID) {
			s.notifications[id] = markRead(n, userID)
		}
	}
	return nil
}

// DeleteNotification drops a personal row and hides a global one from userID.
func (s *Store) DeleteNotification(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || !visible(n, userID) {
		return repository.ErrNotFound
	}
	if n.IsGlobal {
		n.HiddenFor = append(slices.Clone(n.HiddenFor), userID)
		s.notifications[id] = n
		return nil
	}
	delete(s.notifications, id)
	return nil
}

// Stats

func (s *Store) Summary(_ context.Context) (*models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.Summary{
		TotalUsers:     int64(len(s.users)),
		TotalDonations: int64(len(s.donations)),
		TotalRequests:  int64(len(s.requests)),
		TotalCampaigns: int64(len(s.campaigns)),
	}, nil
}
