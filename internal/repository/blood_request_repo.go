package repository

import (
	"context"

	"bloodalert/internal/models"

	"gorm.io/gorm"
)

type BloodRequestRepository struct {
	db *gorm.DB
}

func NewBloodRequestRepository(db *gorm.DB) *BloodRequestRepository {
	return &BloodRequestRepository{db: db}
}

func (r *BloodRequestRepository) CreateBloodRequest(ctx context.Context, br *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(br).Error
}

func (r *BloodRequestRepository) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	var br models.BloodRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&br).Error; err != nil {
		return nil, notFound(err)
	}
	return &br, nil
}

func (r *BloodRequestRepository) ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error) {
	var list []models.BloodRequest
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *BloodRequestRepository) UpdateBloodRequestStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&models.BloodRequest{}).Where("id = ?", id).Update("status", status)
	return checkUpdated(ctx, r.db, &models.BloodRequest{}, id, res)
}
