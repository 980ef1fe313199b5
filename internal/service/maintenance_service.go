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
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAssignable     = errors.New("staff member cannot handle maintenance work")
	ErrNotTicketOwner    = errors.New("ticket belongs to another resident")
	ErrNotResolvedYet    = errors.New("ticket is not resolved yet")
	ErrBadRating         = errors.New("rating must be between 1 and 5")
)

// ticketTransitions is the allowed forward edge set of the workflow.
var ticketTransitions = map[string][]string{
	domain.TicketSubmitted:    {domain.TicketAcknowledged, domain.TicketCancelled},
	domain.TicketAcknowledged: {domain.TicketAssigned, domain.TicketCancelled},
	domain.TicketAssigned:     {domain.TicketInProgress, domain.TicketCancelled},
	domain.TicketInProgress:   {domain.TicketResolved, domain.TicketCancelled},
	domain.TicketResolved:     {domain.TicketClosed},
	domain.TicketClosed:       {},
	domain.TicketCancelled:    {},
}

func transitionAllowed(from, to string) bool {
	for _, s := range ticketTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type MaintenanceService struct {
	repo       *repository.MaintenanceRepository
	categories *repository.MaintenanceCategoryRepository
	staff      *repository.StaffRepository
	seq        *sequence.Generator
	notifSvc   *NotificationService
}

func NewMaintenanceService(
	repo *repository.MaintenanceRepository,
	categories *repository.MaintenanceCategoryRepository,
	staff *repository.StaffRepository,
	seq *sequence.Generator,
	notifSvc *NotificationService,
) *MaintenanceService {
	return &MaintenanceService{
		repo:       repo,
		categories: categories,
		staff:      staff,
		seq:        seq,
		notifSvc:   notifSvc,
	}
}

type CreateTicketInput struct {
	Title         string
	Description   string
	CategoryID    uint
	Location      string
	Priority      int
	AttachmentURL string
}

// CreateTicket opens a new request, numbers it and notifies every staff
// member who can pick maintenance work up.
func (s *MaintenanceService) CreateTicket(residentID uint, in CreateTicketInput) (*models.MaintenanceRequest, error) {
	cat, err := s.categories.GetByID(in.CategoryID)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == 0 {
		priority = cat.PriorityLevel
	}
	number, err := s.seq.Next("MNT")
	if err != nil {
		return nil, err
	}
	m := &models.MaintenanceRequest{
		TicketNumber:  number,
		Title:         in.Title,
		Description:   in.Description,
		CategoryID:    cat.ID,
		ResidentID:    residentID,
		Location:      in.Location,
		Priority:      priority,
		Status:        domain.TicketSubmitted,
		AttachmentURL: in.AttachmentURL,
	}
	if cat.EstimatedResolutionHours > 0 {
		eta := time.Now().Add(time.Duration(cat.EstimatedResolutionHours) * time.Hour)
		m.EstimatedCompletion = &eta
	}
	if err := s.repo.Create(m); err != nil {
		return nil, err
	}
	s.notifyStaffNewTicket(m)
	return m, nil
}

func (s *MaintenanceService) notifyStaffNewTicket(m *models.MaintenanceRequest) {
	if s.notifSvc == nil {
		return
	}
	staffList, err := s.staff.ListMaintenanceStaff()
	if err != nil {
		log.Printf("[maintenance] staff lookup for ticket %s failed: %v", m.TicketNumber, err)
		return
	}
	ids := make([]uint, 0, len(staffList))
	for _, st := range staffList {
		ids = append(ids, st.UserID)
	}
	typeName := "new_maintenance_request"
	title := fmt.Sprintf("New Maintenance Request: %s", m.TicketNumber)
	if m.Priority == domain.PriorityEmergency {
		typeName = "urgent_maintenance_request"
		title = fmt.Sprintf("URGENT Maintenance Request: %s", m.TicketNumber)
	}
	s.notifSvc.NotifyMany(ids, typeName, title, m.Title,
		domain.RelatedRef{Kind: domain.RelatedMaintenance, ID: m.ID},
		map[string]interface{}{"ticket_number": m.TicketNumber, "location": m.Location})
}

// Acknowledge moves a submitted ticket to acknowledged.
func (s *MaintenanceService) Acknowledge(ticketID, actorID uint) (*models.MaintenanceRequest, error) {
	return s.transition(ticketID, actorID, domain.TicketAcknowledged, "")
}

// Assign hands the ticket to a maintenance-capable staff member and
// moves it to assigned. Assignment from the submitted state implies an
// acknowledgement first.
func (s *MaintenanceService) Assign(ticketID, assigneeUserID, actorID uint) (*models.MaintenanceRequest, error) {
	st, err := s.staff.GetByUserID(assigneeUserID)
	if err != nil {
		return nil, err
	}
	if !st.CanHandleMaintenance() {
		return nil, ErrNotAssignable
	}
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if m.Status == domain.TicketSubmitted {
		stampStatus(m, domain.TicketAcknowledged)
	}
	if !transitionAllowed(m.Status, domain.TicketAssigned) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, domain.TicketAssigned)
	}
	stampStatus(m, domain.TicketAssigned)
	m.AssignedToID = &assigneeUserID
	m.AssignedByID = &actorID
	if err := s.repo.SaveVersioned(m); err != nil {
		return nil, err
	}
	if s.notifSvc != nil {
		_, _ = s.notifSvc.Notify(assigneeUserID, "maintenance_assigned",
			fmt.Sprintf("Ticket Assigned: %s", m.TicketNumber), m.Title,
			domain.RelatedRef{Kind: domain.RelatedMaintenance, ID: m.ID},
			map[string]interface{}{"ticket_number": m.TicketNumber}, notify.Channel(""))
	}
	s.notifyResidentStatus(m)
	return m, nil
}

// StartProgress marks work on an assigned ticket as underway.
func (s *MaintenanceService) StartProgress(ticketID, actorID uint) (*models.MaintenanceRequest, error) {
	return s.transition(ticketID, actorID, domain.TicketInProgress, "")
}

// Resolve marks the work as done.
func (s *MaintenanceService) Resolve(ticketID, actorID uint, note string) (*models.MaintenanceRequest, error) {
	return s.transition(ticketID, actorID, domain.TicketResolved, note)
}

// Close finishes a resolved ticket.
func (s *MaintenanceService) Close(ticketID, actorID uint) (*models.MaintenanceRequest, error) {
	return s.transition(ticketID, actorID, domain.TicketClosed, "")
}

// Cancel withdraws a ticket. Only the owning resident may cancel, and
// only before resolution.
func (s *MaintenanceService) Cancel(ticketID, residentID uint, reason string) (*models.MaintenanceRequest, error) {
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if m.ResidentID != residentID {
		return nil, ErrNotTicketOwner
	}
	if !transitionAllowed(m.Status, domain.TicketCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, domain.TicketCancelled)
	}
	stampStatus(m, domain.TicketCancelled)
	if err := s.repo.SaveVersioned(m); err != nil {
		return nil, err
	}
	if reason != "" {
		s.recordUpdate(m, residentID, reason)
	}
	if s.notifSvc != nil && m.AssignedToID != nil {
		_, _ = s.notifSvc.Notify(*m.AssignedToID, "maintenance_status_change",
			fmt.Sprintf("Ticket Cancelled: %s", m.TicketNumber), m.Title,
			domain.RelatedRef{Kind: domain.RelatedMaintenance, ID: m.ID},
			map[string]interface{}{"ticket_number": m.TicketNumber, "status": m.Status}, notify.Channel(""))
	}
	return m, nil
}

func (s *MaintenanceService) transition(ticketID, actorID uint, to, note string) (*models.MaintenanceRequest, error) {
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(m.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, to)
	}
	stampStatus(m, to)
	if err := s.repo.SaveVersioned(m); err != nil {
		return nil, err
	}
	if note != "" {
		s.recordUpdate(m, actorID, note)
	}
	s.notifyResidentStatus(m)
	return m, nil
}

// stampStatus sets the new status and its timestamp. Timestamps are
// first-write-wins so a re-entered status never rewrites history.
func stampStatus(m *models.MaintenanceRequest, to string) {
	now := time.Now()
	m.Status = to
	switch to {
	case domain.TicketAcknowledged:
		if m.AcknowledgedAt == nil {
			m.AcknowledgedAt = &now
		}
	case domain.TicketAssigned:
		if m.AssignedAt == nil {
			m.AssignedAt = &now
		}
	case domain.TicketResolved:
		if m.ResolvedAt == nil {
			m.ResolvedAt = &now
		}
	case domain.TicketClosed:
		if m.ClosedAt == nil {
			m.ClosedAt = &now
		}
	}
}

func (s *MaintenanceService) notifyResidentStatus(m *models.MaintenanceRequest) {
	if s.notifSvc == nil {
		return
	}
	_, err := s.notifSvc.Notify(m.ResidentID, "maintenance_status_change",
		fmt.Sprintf("Maintenance Update: %s", m.TicketNumber),
		fmt.Sprintf("Your request %q is now %s.", m.Title, m.Status),
		domain.RelatedRef{Kind: domain.RelatedMaintenance, ID: m.ID},
		map[string]interface{}{"ticket_number": m.TicketNumber, "status": m.Status},
		notify.Channel(""))
	if err != nil {
		log.Printf("[maintenance] status notification for %s failed: %v", m.TicketNumber, err)
	}
}

func (s *MaintenanceService) recordUpdate(m *models.MaintenanceRequest, authorID uint, content string) {
	u := &models.MaintenanceUpdate{
		RequestID:       m.ID,
		AuthorID:        authorID,
		Content:         content,
		StatusChangedTo: m.Status,
	}
	if err := s.repo.AddUpdate(u); err != nil {
		log.Printf("[maintenance] update record for %s failed: %v", m.TicketNumber, err)
	}
}

// SetCosts records the estimated or actual cost on a ticket.
func (s *MaintenanceService) SetCosts(ticketID uint, estimated, actual *float64) (*models.MaintenanceRequest, error) {
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if estimated != nil {
		m.EstimatedCost = estimated
	}
	if actual != nil {
		m.ActualCost = actual
	}
	if err := s.repo.SaveVersioned(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Rate lets the owning resident score a resolved or closed ticket.
func (s *MaintenanceService) Rate(ticketID, residentID uint, rating int, feedback string) (*models.MaintenanceRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrBadRating
	}
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if m.ResidentID != residentID {
		return nil, ErrNotTicketOwner
	}
	if m.Status != domain.TicketResolved && m.Status != domain.TicketClosed {
		return nil, ErrNotResolvedYet
	}
	m.ResidentRating = &rating
	m.ResidentFeedback = feedback
	if err := s.repo.SaveVersioned(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddUpdate posts a progress note on a ticket.
func (s *MaintenanceService) AddUpdate(ticketID, authorID uint, content, attachmentURL string) (*models.MaintenanceUpdate, error) {
	m, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	u := &models.MaintenanceUpdate{
		RequestID:     m.ID,
		AuthorID:      authorID,
		Content:       content,
		AttachmentURL: attachmentURL,
	}
	if err := s.repo.AddUpdate(u); err != nil {
		return nil, err
	}
	if s.notifSvc != nil && authorID != m.ResidentID {
		_, _ = s.notifSvc.Notify(m.ResidentID, "maintenance_status_change",
			fmt.Sprintf("Update on %s", m.TicketNumber), content,
			domain.RelatedRef{Kind: domain.RelatedMaintenance, ID: m.ID},
			map[string]interface{}{"ticket_number": m.TicketNumber, "status": m.Status}, notify.Channel(""))
	}
	return u, nil
}
