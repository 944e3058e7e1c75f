package models

import (
	"time"

	"bloodalert/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" firestore:"-" bson:"_id"`
	Name         string    `gorm:"size:128" json:"name" firestore:"name" bson:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email" firestore:"email" bson:"email"`
	PasswordHash string    `gorm:"size:255" json:"-" firestore:"passwordHash" bson:"passwordHash"`
	Role         string    `gorm:"size:20;not null;index" json:"role" firestore:"role" bson:"role"` // donor | recipient | admin
	AdminType    string    `gorm:"size:20" json:"adminType,omitempty" firestore:"adminType" bson:"adminType"`
	BloodGroup   string    `gorm:"size:4;index" json:"bloodGroup" firestore:"bloodGroup" bson:"bloodGroup"`
	Phone        string    `gorm:"size:32" json:"phone" firestore:"phone" bson:"phone"`
	Location     string    `gorm:"size:255" json:"location" firestore:"location" bson:"location"`
	FCMToken     string    `gorm:"size:512" json:"-" firestore:"fcmToken" bson:"fcmToken"` // For push notifications
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) ResolvedRole() domain.Role { return domain.ResolveRole(u.Role, u.AdminType) }
func (u *User) IsAdmin() bool             { return u.ResolvedRole().IsAdmin() }

// DisplayName falls back to the email when no name was given at signup.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
