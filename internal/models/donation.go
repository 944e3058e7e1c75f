package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Donation struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id" firestore:"-" bson:"_id"`
	DonorID           string    `gorm:"size:64;index" json:"donorId" firestore:"donorId" bson:"donorId"`
	DonorName         string    `gorm:"size:128" json:"donorName" firestore:"donorName" bson:"donorName"`
	Email             string    `gorm:"size:255" json:"email" firestore:"email" bson:"email"`
	Phone             string    `gorm:"size:32" json:"phone" firestore:"phone" bson:"phone"`
	Age               int       `json:"age" firestore:"age" bson:"age"`
	BloodGroup        string    `gorm:"size:4;index" json:"bloodGroup" firestore:"bloodGroup" bson:"bloodGroup"`
	Units             int       `gorm:"not null;default:1" json:"units" firestore:"units" bson:"units"`
	Status            string    `gorm:"size:20;index" json:"status" firestore:"status" bson:"status"`
	Location          string    `gorm:"size:255" json:"location" firestore:"location" bson:"location"`
	PreferredDate     string    `gorm:"size:32" json:"preferredDate" firestore:"preferredDate" bson:"preferredDate"`
	MedicalConditions string    `gorm:"type:text" json:"medicalConditions" firestore:"medicalConditions" bson:"medicalConditions"`
	ConsentGiven      bool      `json:"consentGiven" firestore:"consentGiven" bson:"consentGiven"`
	CreatedAt         time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (d *Donation) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
