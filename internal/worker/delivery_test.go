package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeSMS struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeSMS) Send(phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

type deliveryEnv struct {
	db            *gorm.DB
	notifications *repository.NotificationRepository
	mailer        *fakeMailer
	sms           *fakeSMS
	deliverer     *Deliverer
}

func newDeliveryEnv(t *testing.T) *deliveryEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Resident{}, &models.Staff{},
		&models.NotificationType{}, &models.Notification{},
	))
	env := &deliveryEnv{
		db:            db,
		notifications: repository.NewNotificationRepository(db),
		mailer:        &fakeMailer{},
		sms:           &fakeSMS{},
	}
	env.deliverer = NewDeliverer(
		env.notifications,
		repository.NewUserRepository(db),
		repository.NewResidentRepository(db),
		repository.NewStaffRepository(db),
		env.mailer,
		env.sms,
	)
	return env
}

func (e *deliveryEnv) seedRecipient(t *testing.T, phone string) *models.User {
	t.Helper()
	u := &models.User{
		Username: "alice", Email: "alice@example.com",
		PasswordHash: "x", Name: "Alice",
		UserType: domain.UserTypeResident, IsActive: true,
	}
	require.NoError(t, e.db.Create(u).Error)
	require.NoError(t, e.db.Create(&models.Resident{
		UserID: u.ID, FlatNumber: "101", PhoneNumber: phone,
	}).Error)
	return u
}

func (e *deliveryEnv) seedNotification(t *testing.T, recipientID uint, smsTemplate, data string) *models.Notification {
	t.Helper()
	nt := &models.NotificationType{
		Name: "test_type", SMSTemplate: smsTemplate, DefaultDelivery: "both",
	}
	require.NoError(t, e.db.Create(nt).Error)
	n := &models.Notification{
		Reference:   "01HTESTREFERENCE0000000000",
		RecipientID: recipientID,
		TypeID:      nt.ID,
		Title:       "Hello",
		Message:     "Body",
		Data:        data,
		Status:      domain.NotificationSent,
	}
	require.NoError(t, e.db.Create(n).Error)
	return n
}

func TestDeliverBothChannels(t *testing.T) {
	env := newDeliveryEnv(t)
	u := env.seedRecipient(t, "9876543210")
	n := env.seedNotification(t, u.ID, "Ticket {ticket_number} moved to {status}.",
		`{"ticket_number":"MNT-2026-0001","status":"resolved"}`)

	require.NoError(t, env.deliverer.Deliver(n.ID, "both"))

	got, err := env.notifications.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationDelivered, got.Status)
	assert.True(t, got.EmailSent)
	assert.True(t, got.SMSSent)
	require.NotNil(t, got.SentAt)

	assert.Equal(t, []string{"alice@example.com"}, env.mailer.sent)
	require.Len(t, env.sms.messages, 1)
	assert.Equal(t, "Ticket MNT-2026-0001 moved to resolved.", env.sms.messages[0])
}

func TestDeliverSMSTemplateMissingValueFails(t *testing.T) {
	env := newDeliveryEnv(t)
	u := env.seedRecipient(t, "9876543210")
	n := env.seedNotification(t, u.ID, "Ticket {ticket_number} moved to {status}.",
		`{"ticket_number":"MNT-2026-0001"}`)

	require.NoError(t, env.deliverer.Deliver(n.ID, "sms"))

	got, err := env.notifications.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationFailed, got.Status)
	assert.False(t, got.SMSSent)
	assert.Nil(t, got.SentAt)
	assert.Empty(t, env.sms.messages)
}

func TestDeliverNoPhoneIsVacuousSuccess(t *testing.T) {
	env := newDeliveryEnv(t)
	u := env.seedRecipient(t, "")
	n := env.seedNotification(t, u.ID, "{title}", "")

	require.NoError(t, env.deliverer.Deliver(n.ID, "sms"))

	got, err := env.notifications.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationDelivered, got.Status)
	assert.False(t, got.SMSSent)
	require.NotNil(t, got.SentAt)
}

func TestDeliverEmailFailureMarksFailed(t *testing.T) {
	env := newDeliveryEnv(t)
	env.mailer.err = errors.New("smtp unreachable")
	u := env.seedRecipient(t, "9876543210")
	n := env.seedNotification(t, u.ID, "{title}", "")

	require.NoError(t, env.deliverer.Deliver(n.ID, "both"))

	got, err := env.notifications.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationFailed, got.Status)
	assert.False(t, got.EmailSent)
	// The SMS leg still went out even though the outcome is failed.
	assert.True(t, got.SMSSent)
}

func TestDeliverMissingNotificationIsNoOp(t *testing.T) {
	env := newDeliveryEnv(t)
	assert.NoError(t, env.deliverer.Deliver(9999, "email"))
}

func TestRunDrainsQueue(t *testing.T) {
	env := newDeliveryEnv(t)
	u := env.seedRecipient(t, "9876543210")
	n := env.seedNotification(t, u.ID, "{title}", "")

	q := queue.NewMemory(8)
	require.NoError(t, q.Enqueue(context.Background(), queue.NewJob(n.ID, "email")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.deliverer.Run(ctx, q, 2)
		close(done)
	}()

	require.Eventually(t, func() bool {
		got, err := env.notifications.GetByID(n.ID)
		return err == nil && got.Status == domain.NotificationDelivered
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}
