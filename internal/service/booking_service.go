package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/notify"
	"khakiestate/internal/repository"
	"khakiestate/internal/sequence"

	"gorm.io/gorm"
)

var (
	ErrNotApprover     = errors.New("not the designated approver for this booking")
	ErrNotPending      = errors.New("booking is not pending")
	ErrNotBookingOwner = errors.New("booking belongs to another resident")
	ErrSlotTaken       = errors.New("the area is already booked for that slot")
	ErrAreaInactive    = errors.New("common area is not bookable")
	ErrBadTimeRange    = errors.New("start and end must be HH:MM times")
	ErrNotFinanceStaff = errors.New("staff member cannot manage finances")
)

type BookingService struct {
	repo      *repository.BookingRepository
	areas     *repository.CommonAreaRepository
	approvers *repository.ApproverRepository
	staff     *repository.StaffRepository
	seq       *sequence.Generator
	notifSvc  *NotificationService
}

func NewBookingService(
	repo *repository.BookingRepository,
	areas *repository.CommonAreaRepository,
	approvers *repository.ApproverRepository,
	staff *repository.StaffRepository,
	seq *sequence.Generator,
	notifSvc *NotificationService,
) *BookingService {
	return &BookingService{
		repo:      repo,
		areas:     areas,
		approvers: approvers,
		staff:     staff,
		seq:       seq,
		notifSvc:  notifSvc,
	}
}

type CreateBookingInput struct {
	CommonAreaID uint
	BookingDate  time.Time
	StartTime    string
	EndTime      string
	Purpose      string
	GuestsCount  int
}

// CreateBooking reserves an area slot, numbers the booking, snapshots
// the area's active approver and notifies them.
func (s *BookingService) CreateBooking(residentID uint, in CreateBookingInput) (*models.Booking, error) {
	area, err := s.areas.GetByID(in.CommonAreaID)
	if err != nil {
		return nil, err
	}
	if !area.IsActive {
		return nil, ErrAreaInactive
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, ErrBadTimeRange
	}
	if _, err := time.Parse("15:04", in.EndTime); err != nil {
		return nil, ErrBadTimeRange
	}
	overlapping, err := s.repo.ListOverlapping(area.ID, in.BookingDate.Format("2006-01-02"), in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotTaken
	}
	number, err := s.seq.Next("BKG")
	if err != nil {
		return nil, err
	}
	b := &models.Booking{
		BookingNumber: number,
		CommonAreaID:  area.ID,
		ResidentID:    residentID,
		BookingDate:   in.BookingDate,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Purpose:       in.Purpose,
		GuestsCount:   in.GuestsCount,
		Status:        domain.BookingPending,
	}
	b.TotalFee = area.BookingFee * b.DurationHours()

	assignment, err := s.approvers.GetActiveForArea(area.ID)
	switch {
	case err == nil:
		b.DesignatedApproverID = &assignment.ApproverID
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Printf("[booking] no active approver for area %d, booking %s stays undecidable until one is assigned", area.ID, number)
	default:
		return nil, err
	}

	if err := s.repo.Create(b); err != nil {
		return nil, err
	}
	if s.notifSvc != nil && b.DesignatedApproverID != nil {
		_, _ = s.notifSvc.Notify(*b.DesignatedApproverID, "booking_pending_approval",
			fmt.Sprintf("Booking Awaiting Approval: %s", b.BookingNumber),
			fmt.Sprintf("%s on %s from %s to %s needs your decision.", area.Name, b.BookingDate.Format("02 Jan 2006"), b.StartTime, b.EndTime),
			domain.RelatedRef{Kind: domain.RelatedBooking, ID: b.ID},
			map[string]interface{}{"booking_number": b.BookingNumber, "area": area.Name}, notify.Channel(""))
	}
	return b, nil
}

// Approve accepts a pending booking. Only the designated approver may
// decide it.
func (s *BookingService) Approve(bookingID, actorID uint) (*models.Booking, error) {
	return s.decide(bookingID, actorID, true, "")
}

// Reject declines a pending booking with a reason.
func (s *BookingService) Reject(bookingID, actorID uint, reason string) (*models.Booking, error) {
	return s.decide(bookingID, actorID, false, reason)
}

func (s *BookingService) decide(bookingID, actorID uint, approve bool, reason string) (*models.Booking, error) {
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.DesignatedApproverID == nil || *b.DesignatedApproverID != actorID {
		return nil, ErrNotApprover
	}
	if b.Status != domain.BookingPending {
		return nil, ErrNotPending
	}
	now := time.Now()
	if approve {
		b.Status = domain.BookingApproved
	} else {
		b.Status = domain.BookingRejected
		b.RejectionReason = reason
	}
	b.ApprovedByID = &actorID
	b.ApprovedAt = &now
	b.StatusChangedByID = &actorID
	b.StatusChangedAt = &now
	if err := s.repo.SaveVersioned(b); err != nil {
		return nil, err
	}
	s.notifyResidentDecision(b)
	return b, nil
}

func (s *BookingService) notifyResidentDecision(b *models.Booking) {
	if s.notifSvc == nil {
		return
	}
	typeName := "booking_approved"
	title := fmt.Sprintf("Booking Approved: %s", b.BookingNumber)
	message := fmt.Sprintf("Your booking for %s on %s is approved.", b.StartTime, b.BookingDate.Format("02 Jan 2006"))
	if b.Status == domain.BookingRejected {
		typeName = "booking_rejected"
		title = fmt.Sprintf("Booking Rejected: %s", b.BookingNumber)
		message = fmt.Sprintf("Your booking for %s was rejected. %s", b.BookingDate.Format("02 Jan 2006"), b.RejectionReason)
	}
	_, err := s.notifSvc.Notify(b.ResidentID, typeName, title, message,
		domain.RelatedRef{Kind: domain.RelatedBooking, ID: b.ID},
		map[string]interface{}{"booking_number": b.BookingNumber, "status": b.Status}, notify.Channel(""))
	if err != nil {
		log.Printf("[booking] decision notification for %s failed: %v", b.BookingNumber, err)
	}
}

// Confirm acknowledges an approved booking as final.
func (s *BookingService) Confirm(bookingID, residentID uint) (*models.Booking, error) {
	b, err := s.ownedBooking(bookingID, residentID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingApproved {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, domain.BookingConfirmed)
	}
	return s.setStatus(b, domain.BookingConfirmed, residentID)
}

// Cancel withdraws a booking before it runs. The area's approver is
// told so the slot can be re-offered.
func (s *BookingService) Cancel(bookingID, residentID uint) (*models.Booking, error) {
	b, err := s.ownedBooking(bookingID, residentID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.BookingPending, domain.BookingApproved, domain.BookingConfirmed:
	default:
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, domain.BookingCancelled)
	}
	b, err = s.setStatus(b, domain.BookingCancelled, residentID)
	if err != nil {
		return nil, err
	}
	if s.notifSvc != nil && b.DesignatedApproverID != nil {
		_, _ = s.notifSvc.Notify(*b.DesignatedApproverID, "booking_cancelled_by_resident",
			fmt.Sprintf("Booking Cancelled: %s", b.BookingNumber),
			fmt.Sprintf("The booking for %s on %s was cancelled by the resident.", b.StartTime, b.BookingDate.Format("02 Jan 2006")),
			domain.RelatedRef{Kind: domain.RelatedBooking, ID: b.ID},
			map[string]interface{}{"booking_number": b.BookingNumber}, notify.Channel(""))
	}
	return b, nil
}

// Complete closes out a booking whose slot has passed. Only the booking's
// resident or the area's designated approver may do it.
func (s *BookingService) Complete(bookingID, actorID uint) (*models.Booking, error) {
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.ResidentID && (b.DesignatedApproverID == nil || *b.DesignatedApproverID != actorID) {
		return nil, ErrNotBookingOwner
	}
	switch b.Status {
	case domain.BookingApproved, domain.BookingConfirmed:
	default:
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, domain.BookingCompleted)
	}
	return s.setStatus(b, domain.BookingCompleted, actorID)
}

// MarkPaid records payment of the booking fee. Restricted to staff with
// the finance capability.
func (s *BookingService) MarkPaid(bookingID, staffUserID uint) (*models.Booking, error) {
	st, err := s.staff.GetByUserID(staffUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFinanceStaff
		}
		return nil, err
	}
	if !st.CanManageFinances {
		return nil, ErrNotFinanceStaff
	}
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	b.IsPaid = true
	if err := s.repo.SaveVersioned(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) ownedBooking(bookingID, residentID uint) (*models.Booking, error) {
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ResidentID != residentID {
		return nil, ErrNotBookingOwner
	}
	return b, nil
}

func (s *BookingService) setStatus(b *models.Booking, status string, actorID uint) (*models.Booking, error) {
	now := time.Now()
	b.Status = status
	b.StatusChangedByID = &actorID
	b.StatusChangedAt = &now
	if err := s.repo.SaveVersioned(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AssignApprover activates a resident as the single approver for an
// area, deactivating any previous assignment.
func (s *BookingService) AssignApprover(areaID, approverID uint, notes string) (*models.ApproverAssignment, error) {
	if _, err := s.areas.GetByID(areaID); err != nil {
		return nil, err
	}
	return s.approvers.Activate(areaID, approverID, notes)
}
