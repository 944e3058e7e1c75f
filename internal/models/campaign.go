package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodCampaign struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" firestore:"-" bson:"_id"`
	Title       string    `gorm:"size:255;not null" json:"title" firestore:"title" bson:"title"`
	Description string    `gorm:"type:text" json:"description" firestore:"description" bson:"description"`
	Location    string    `gorm:"size:255" json:"location" firestore:"location" bson:"location"`
	StartsAt    time.Time `json:"startsAt" firestore:"startsAt" bson:"startsAt"`
	EndsAt      time.Time `json:"endsAt" firestore:"endsAt" bson:"endsAt"`
	BannerURL   string    `gorm:"size:512" json:"bannerUrl" firestore:"bannerUrl" bson:"bannerUrl"`
	Active      bool      `gorm:"not null;default:true;index" json:"active" firestore:"active" bson:"active"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (BloodCampaign) TableName() string {
	return "blood_campaigns"
}

func (c *BloodCampaign) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Summary is the headline count block of the admin dashboard.
type Summary struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalDonations int64 `json:"totalDonations"`
	TotalRequests  int64 `json:"totalRequests"`
	TotalCampaigns int64 `json:"totalCampaigns"`
}
