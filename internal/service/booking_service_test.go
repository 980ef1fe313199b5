package service

import (
	"fmt"
	"testing"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/repository"
	"khakiestate/internal/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingEnv struct {
	*testEnv
	svc       *BookingService
	repo      *repository.BookingRepository
	approvers *repository.ApproverRepository
	area      *models.CommonArea
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	env := newTestEnv(t)
	for _, name := range []string{
		"booking_pending_approval", "booking_approved",
		"booking_rejected", "booking_cancelled_by_resident",
	} {
		env.seedType(t, name, "email", false)
	}
	area := &models.CommonArea{
		Name: "Community Hall", Capacity: 100, BookingFee: 500,
		IsActive: true, AvailableStart: "06:00", AvailableEnd: "22:00",
	}
	require.NoError(t, env.db.Create(area).Error)
	repo := repository.NewBookingRepository(env.db)
	approvers := repository.NewApproverRepository(env.db)
	svc := NewBookingService(
		repo,
		repository.NewCommonAreaRepository(env.db),
		approvers,
		env.staff,
		sequence.NewGenerator(env.db),
		env.notifSvc,
	)
	return &bookingEnv{testEnv: env, svc: svc, repo: repo, approvers: approvers, area: area}
}

func (e *bookingEnv) setApprover(t *testing.T, approverID uint) {
	t.Helper()
	_, err := e.svc.AssignApprover(e.area.ID, approverID, "")
	require.NoError(t, err)
}

func bookingDate() time.Time {
	return time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
}

func TestCreateBookingSnapshotsApproverAndFee(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", func(r *models.Resident) { r.IsCommitteeMember = true })
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "14:00",
		Purpose:      "Birthday",
	})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("BKG-%d-0001", year), b.BookingNumber)
	assert.Equal(t, domain.BookingPending, b.Status)
	require.NotNil(t, b.DesignatedApproverID)
	assert.Equal(t, approver.ID, *b.DesignatedApproverID)
	assert.Equal(t, 2000.0, b.TotalFee) // 4 hours at 500

	// The approver is told about the pending booking.
	list, err := env.notifications.ListByRecipient(approver.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOvernightBookingDuration(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "22:00",
		EndTime:      "02:00",
	})
	require.NoError(t, err)

	// 22:00 to 02:00 wraps into the next day: 4 hours.
	assert.Equal(t, 4.0, b.DurationHours())
	assert.Equal(t, 2000.0, b.TotalFee)
}

func TestCreateBookingWithoutApproverStaysPending(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)
	assert.Nil(t, b.DesignatedApproverID)
	assert.Equal(t, domain.BookingPending, b.Status)
}

func TestApproveRequiresDesignatedApprover(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	intruder := env.makeResident(t, "eve", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)

	_, err = env.svc.Approve(b.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrNotApprover)
	_, err = env.svc.Approve(b.ID, resident.ID)
	assert.ErrorIs(t, err, ErrNotApprover)

	b, err = env.svc.Approve(b.ID, approver.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, b.Status)
	require.NotNil(t, b.ApprovedAt)
	require.NotNil(t, b.ApprovedByID)
	assert.Equal(t, approver.ID, *b.ApprovedByID)

	// Already decided; a second decision fails.
	_, err = env.svc.Reject(b.ID, approver.ID, "nope")
	assert.ErrorIs(t, err, ErrNotPending)

	// The resident heard about the approval.
	list, err := env.notifications.ListByRecipient(resident.ID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Title, "Approved")
}

func TestRejectRecordsReason(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)

	b, err = env.svc.Reject(b.ID, approver.ID, "hall reserved for society AGM")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, b.Status)
	assert.Equal(t, "hall reserved for society AGM", b.RejectionReason)
}

func TestConfirmOnlyFromApproved(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)

	_, err = env.svc.Confirm(b.ID, resident.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.Approve(b.ID, approver.ID)
	require.NoError(t, err)
	b, err = env.svc.Confirm(b.ID, resident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
}

func TestCancelNotifiesApprover(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)

	b, err = env.svc.Cancel(b.ID, resident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)

	// Pending-approval plus cancellation notices.
	list, err := env.notifications.ListByRecipient(approver.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestOverlappingBookingRejected(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	date := bookingDate()

	_, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  date,
		StartTime:    "10:00",
		EndTime:      "14:00",
	})
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  date,
		StartTime:    "12:00",
		EndTime:      "16:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestAssignApproverDeactivatesPrevious(t *testing.T) {
	env := newBookingEnv(t)
	first := env.makeResident(t, "chair", nil)
	second := env.makeResident(t, "vicechair", nil)

	_, err := env.svc.AssignApprover(env.area.ID, first.ID, "")
	require.NoError(t, err)
	_, err = env.svc.AssignApprover(env.area.ID, second.ID, "rotation")
	require.NoError(t, err)

	active, err := env.approvers.GetActiveForArea(env.area.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ApproverID)

	all, err := env.approvers.ListByArea(env.area.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	activeCount := 0
	for _, a := range all {
		if a.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestCompleteRestrictedToOwnerOrApprover(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	stranger := env.makeResident(t, "bob", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)
	_, err = env.svc.Approve(b.ID, approver.ID)
	require.NoError(t, err)

	_, err = env.svc.Complete(b.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotBookingOwner)
	fresh, err := env.repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, fresh.Status)

	b, err = env.svc.Complete(b.ID, approver.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, b.Status)
	require.NotNil(t, b.StatusChangedByID)
	assert.Equal(t, approver.ID, *b.StatusChangedByID)
}

func TestCompleteByBookingResident(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)
	_, err = env.svc.Approve(b.ID, approver.ID)
	require.NoError(t, err)

	b, err = env.svc.Complete(b.ID, resident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, b.Status)
}

func TestMarkPaidRequiresFinanceCapability(t *testing.T) {
	env := newBookingEnv(t)
	resident := env.makeResident(t, "alice", nil)
	approver := env.makeResident(t, "chair", nil)
	accountant := env.makeStaff(t, "books", domain.RoleAccountant, nil)
	plumber := env.makeStaff(t, "pipes", domain.RolePlumber, nil)
	env.setApprover(t, approver.ID)

	b, err := env.svc.CreateBooking(resident.ID, CreateBookingInput{
		CommonAreaID: env.area.ID,
		BookingDate:  bookingDate(),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	require.NoError(t, err)

	_, err = env.svc.MarkPaid(b.ID, plumber.ID)
	assert.ErrorIs(t, err, ErrNotFinanceStaff)
	_, err = env.svc.MarkPaid(b.ID, resident.ID)
	assert.ErrorIs(t, err, ErrNotFinanceStaff)

	b, err = env.svc.MarkPaid(b.ID, accountant.ID)
	require.NoError(t, err)
	assert.True(t, b.IsPaid)
}
