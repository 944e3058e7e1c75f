package models

import (
	"time"

	"bloodalert/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodRequest struct {
	ID            string `gorm:"primaryKey;size:36" json:"id" firestore:"-" bson:"_id"`
	PatientName   string `gorm:"size:128" json:"patientName" firestore:"patientName" bson:"patientName"`
	PatientAge    int    `json:"patientAge" firestore:"patientAge" bson:"patientAge"`
	BloodGroup    string `gorm:"size:4;index" json:"bloodGroup" firestore:"bloodGroup" bson:"bloodGroup"`
	UnitsNeeded   int    `gorm:"not null;default:1" json:"unitsNeeded" firestore:"unitsNeeded" bson:"unitsNeeded"`
	Urgency       string `gorm:"size:20;index" json:"urgency" firestore:"urgency" bson:"urgency"` // urgent | high | normal
	UrgencyLevel  string `gorm:"size:20" json:"urgencyLevel,omitempty" firestore:"urgencyLevel" bson:"urgencyLevel"`
	Status        string `gorm:"size:20;index" json:"status" firestore:"status" bson:"status"` // active | pending | fulfilled | cancelled
	Hospital      string `gorm:"size:255" json:"hospital" firestore:"hospital" bson:"hospital"`
	RequestedBy   string `gorm:"size:128" json:"requestedBy" firestore:"requestedBy" bson:"requestedBy"`
	ContactPerson string `gorm:"size:128" json:"contactPerson" firestore:"contactPerson" bson:"contactPerson"`
	ContactPhone  string `gorm:"size:32" json:"contactPhone" firestore:"contactPhone" bson:"contactPhone"`
	Email         string `gorm:"size:255" json:"email" firestore:"email" bson:"email"`
	Location      string `gorm:"size:255" json:"location" firestore:"location" bson:"location"`
	MedicalReason string `gorm:"type:text" json:"medicalReason" firestore:"medicalReason" bson:"medicalReason"`
	// RequiredBy is kept as written by the client; document stores do not enforce a date type.
	RequiredBy string    `gorm:"size:32" json:"requiredBy" firestore:"requiredBy" bson:"requiredBy"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (r *BloodRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsEmergency reports whether the request belongs in the emergency table.
func (r *BloodRequest) IsEmergency() bool {
	return r.Urgency == domain.RequestUrgencyUrgent && r.Status == domain.RequestStatusActive
}

// IsPending reports whether the request still needs donors.
func (r *BloodRequest) IsPending() bool {
	return r.Status == domain.RequestStatusActive || r.Status == domain.RequestStatusPending
}

// IsHighPriority reports whether the request should be pushed to the admin room.
func (r *BloodRequest) IsHighPriority() bool {
	return r.Urgency == domain.RequestUrgencyUrgent || r.Urgency == domain.RequestUrgencyHigh
}
