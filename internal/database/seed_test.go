package database

import (
	"testing"

	"khakiestate/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database shared and serializes
	// concurrent transactions.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.NotificationType{},
		&models.MaintenanceCategory{},
		&models.AnnouncementCategory{},
	))
	return db
}

func TestSeedNotificationTypesIsIdempotent(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, SeedNotificationTypes(db))
	var first int64
	require.NoError(t, db.Model(&models.NotificationType{}).Count(&first).Error)
	assert.Equal(t, int64(len(notificationTypeSeeds)), first)

	require.NoError(t, SeedNotificationTypes(db))
	var second int64
	require.NoError(t, db.Model(&models.NotificationType{}).Count(&second).Error)
	assert.Equal(t, first, second)
}

func TestValidateNotificationTypesAfterSeed(t *testing.T) {
	db := newSeedDB(t)
	require.NoError(t, SeedNotificationTypes(db))
	assert.NoError(t, ValidateNotificationTypes(db))
}

func TestValidateNotificationTypesReportsMissing(t *testing.T) {
	db := newSeedDB(t)
	require.NoError(t, SeedNotificationTypes(db))
	require.NoError(t, db.Where("name = ?", "booking_approved").
		Delete(&models.NotificationType{}).Error)

	err := ValidateNotificationTypes(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking_approved")
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, SeedCategories(db))
	require.NoError(t, SeedCategories(db))

	var maint, ann int64
	require.NoError(t, db.Model(&models.MaintenanceCategory{}).Count(&maint).Error)
	require.NoError(t, db.Model(&models.AnnouncementCategory{}).Count(&ann).Error)
	assert.Equal(t, int64(len(maintenanceCategorySeeds)), maint)
	assert.Equal(t, int64(len(announcementCategorySeeds)), ann)
}
