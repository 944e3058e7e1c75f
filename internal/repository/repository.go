package repository

import (
	"context"
	"errors"

	"bloodalert/internal/models"
)

// ErrNotFound is returned by every backend when a keyed record is missing.
var ErrNotFound = errors.New("record not found")

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByBloodGroup(ctx context.Context, bloodGroup string) ([]models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type Donations interface {
	CreateDonation(ctx context.Context, d *models.Donation) error
	ListDonations(ctx context.Context) ([]models.Donation, error)
}

type BloodRequests interface {
	CreateBloodRequest(ctx context.Context, r *models.BloodRequest) error
	GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error)
	ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error)
	UpdateBloodRequestStatus(ctx context.Context, id, status string) error
}

type Campaigns interface {
	CreateCampaign(ctx context.Context, c *models.BloodCampaign) error
	GetCampaign(ctx context.Context, id string) (*models.BloodCampaign, error)
	ListCampaigns(ctx context.Context) ([]models.BloodCampaign, error)
	UpdateCampaignBanner(ctx context.Context, id, url string) error
}

// Notifications lists a user's own notifications plus global ones.
type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
}

type Stats interface {
	Summary(ctx context.Context) (*models.Summary, error)
}

// Store is implemented by every storage backend.
type Store interface {
	Users
	Donations
	BloodRequests
	Campaigns
	Notifications
	Stats
	Close() error
}
