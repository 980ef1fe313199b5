package database

import (
	"khakiestate/config"
	"khakiestate/internal/models"
	"khakiestate/internal/sequence"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
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
		&models.Resident{},
		&models.Staff{},
		&models.AnnouncementCategory{},
		&models.Announcement{},
		&models.AnnouncementRead{},
		&models.Comment{},
		&models.MaintenanceCategory{},
		&models.MaintenanceRequest{},
		&models.MaintenanceUpdate{},
		&models.CommonArea{},
		&models.ApproverAssignment{},
		&models.Booking{},
		&models.Event{},
		&models.EventRSVP{},
		&models.MarketplaceItem{},
		&models.NotificationType{},
		&models.Notification{},
		&sequence.Counter{},
	)
}
