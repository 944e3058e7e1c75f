package repository

import (
	"context"

	"bloodalert/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c *models.BloodCampaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id string) (*models.BloodCampaign, error) {
	var c models.BloodCampaign
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListCampaigns returns active campaigns first, newest start date first.
func (r *CampaignRepository) ListCampaigns(ctx context.Context) ([]models.BloodCampaign, error) {
	var list []models.BloodCampaign
	err := r.db.WithContext(ctx).Order("active DESC").Order("starts_at DESC").Find(&list).Error
	return list, err
}

func (r *CampaignRepository) UpdateCampaignBanner(ctx context.Context, id, url string) error {
	res := r.db.WithContext(ctx).Model(&models.BloodCampaign{}).Where("id = ?", id).Update("banner_url", url)
	return checkUpdated(ctx, r.db, &models.BloodCampaign{}, id, res)
}
