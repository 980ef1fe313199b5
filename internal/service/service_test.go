package service

import (
	"testing"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"
	"khakiestate/internal/sequence"
	"khakiestate/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

type testEnv struct {
	db       *gorm.DB
	q        *queue.Memory
	notifSvc *NotificationService

	users         *repository.UserRepository
	residents     *repository.ResidentRepository
	staff         *repository.StaffRepository
	notifications *repository.NotificationRepository
	types         *repository.NotificationTypeRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:            db,
		q:             queue.NewMemory(64),
		users:         repository.NewUserRepository(db),
		residents:     repository.NewResidentRepository(db),
		staff:         repository.NewStaffRepository(db),
		notifications: repository.NewNotificationRepository(db),
		types:         repository.NewNotificationTypeRepository(db),
	}
	env.notifSvc = NewNotificationService(
		env.notifications, env.types, env.users, env.residents, env.staff,
		env.q, ws.NewHub(), nil,
	)
	return env
}

func (e *testEnv) seedType(t *testing.T, name, delivery string, urgent bool) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.NotificationType{
		Name:            name,
		SMSTemplate:     "{title}",
		DefaultDelivery: delivery,
		IsUrgent:        urgent,
	}).Error)
}

func (e *testEnv) makeResident(t *testing.T, username string, mutate func(*models.Resident)) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Name:         username,
		UserType:     domain.UserTypeResident,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(u).Error)
	res := &models.Resident{
		UserID:             u.ID,
		FlatNumber:         "101",
		PhoneNumber:        "9876543210",
		ResidentType:       domain.ResidentOwner,
		EmailNotifications: true,
	}
	if mutate != nil {
		mutate(res)
	}
	require.NoError(t, e.db.Create(res).Error)
	return u
}

func (e *testEnv) makeStaff(t *testing.T, username, role string, mutate func(*models.Staff)) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Name:         username,
		UserType:     domain.UserTypeStaff,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(u).Error)
	st := &models.Staff{
		UserID:             u.ID,
		EmployeeID:         "EMP-" + username,
		StaffRole:          role,
		IsActive:           true,
		EmailNotifications: true,
	}
	applyRoleCapabilities(st)
	if mutate != nil {
		mutate(st)
	}
	require.NoError(t, e.db.Create(st).Error)
	return u
}
