package repository

import (
	"context"

	"bloodalert/internal/models"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) CreateDonation(ctx context.Context, d *models.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonationRepository) ListDonations(ctx context.Context) ([]models.Donation, error) {
	var list []models.Donation
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}
