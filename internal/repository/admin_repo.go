package repository

import (
	"context"

	"bloodalert/internal/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Summary(ctx context.Context) (*models.Summary, error) {
	var s models.Summary
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Donation{}).Count(&s.TotalDonations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BloodRequest{}).Count(&s.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BloodCampaign{}).Count(&s.TotalCampaigns).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
