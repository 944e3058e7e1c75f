package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" firestore:"-" bson:"_id"`
	UserID    string    `gorm:"size:64;index" json:"userId" firestore:"userId" bson:"userId"`
	Title     string    `gorm:"size:255" json:"title" firestore:"title" bson:"title"`
	Message   string    `gorm:"type:text" json:"message" firestore:"message" bson:"message"`
	Type      string    `gorm:"size:20;index" json:"type" firestore:"type" bson:"type"` // urgent | info | success | warning
	Icon      string    `gorm:"size:64" json:"icon" firestore:"icon" bson:"icon"`
	Read      bool      `gorm:"not null;default:false;index" json:"read" firestore:"read" bson:"read"`
	IsGlobal  bool      `gorm:"not null;default:false;index" json:"isGlobal" firestore:"isGlobal" bson:"isGlobal"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`

	// Per-user state of a global notification in the document backends.
	// The relational backend keeps it in NotificationReceipt rows instead.
	ReadBy    []string `gorm:"-" json:"-" firestore:"readBy,omitempty" bson:"readBy,omitempty"`
	HiddenFor []string `gorm:"-" json:"-" firestore:"hiddenFor,omitempty" bson:"hiddenFor,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// HiddenFrom reports whether userID dismissed this global notification.
func (n *Notification) HiddenFrom(userID string) bool {
	return n.IsGlobal && slices.Contains(n.HiddenFor, userID)
}

// ViewFor resolves Read as userID sees it and drops the per-user bookkeeping.
func (n *Notification) ViewFor(userID string) {
	if n.IsGlobal {
		n.Read = slices.Contains(n.ReadBy, userID)
	}
	n.ReadBy, n.HiddenFor = nil, nil
}

// NotificationReceipt is one user's state for a global notification: read,
// or hidden after the user deleted it from their own list.
type NotificationReceipt struct {
	UserID         string `gorm:"primaryKey;size:64"`
	NotificationID string `gorm:"primaryKey;size:36;index"`
	Read           bool   `gorm:"not null"`
	Hidden         bool   `gorm:"not null"`
	UpdatedAt      time.Time
}

func (NotificationReceipt) TableName() string {
	return "notification_receipts"
}

// NotificationList is the list payload served to notification centers.
type NotificationList struct {
	Success     bool           `json:"success"`
	Data        []Notification `json:"data"`
	UnreadCount int            `json:"unreadCount"`
}
