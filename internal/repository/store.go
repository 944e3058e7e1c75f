package repository

import "gorm.io/gorm"

// GormStore serves every collection from one relational database.
type GormStore struct {
	*UserRepository
	*DonationRepository
	*BloodRequestRepository
	*CampaignRepository
	*NotificationRepository
	*AdminRepository
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		UserRepository:         NewUserRepository(db),
		DonationRepository:     NewDonationRepository(db),
		BloodRequestRepository: NewBloodRequestRepository(db),
		CampaignRepository:     NewCampaignRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		AdminRepository:        NewAdminRepository(db),
		db:                     db,
	}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
