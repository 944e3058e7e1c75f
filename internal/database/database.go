package database

import (
	"context"
	"fmt"
	"log"

	"bloodalert/config"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"
	"bloodalert/internal/repository/docstore"
	"bloodalert/internal/repository/memory"
	"bloodalert/internal/repository/mongostore"

	firebase "firebase.google.com/go/v4"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the relational database. Backend "sqlite" treats DSN as a file path.
func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Backend {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = mysql.Open(cfg.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Donation{},
		&models.BloodRequest{},
		&models.BloodCampaign{},
		&models.Notification{},
		&models.NotificationReceipt{},
	)
}

// Open builds the Store selected by cfg.Database.Backend. app may be nil
// unless the firestore backend is selected.
func Open(ctx context.Context, cfg *config.Config, app *firebase.App) (repository.Store, error) {
	switch cfg.Database.Backend {
	case "memory":
		log.Printf("[DB] using in-memory store; data is lost on restart")
		return memory.New(), nil
	case "firestore":
		if app == nil {
			return nil, fmt.Errorf("firestore backend requires FIREBASE_SERVICE_ACCOUNT_PATH or FIREBASE_PROJECT_ID")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return docstore.New(client), nil
	case "mongo":
		return mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	case "mysql", "sqlite":
		db, err := NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return repository.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.Database.Backend)
	}
}
