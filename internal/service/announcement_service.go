package service

import (
	"errors"
	"fmt"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/repository"

	"gorm.io/gorm"
)

var ErrNotAnnouncer = errors.New("not allowed to publish announcements")

type AnnouncementService struct {
	repo       *repository.AnnouncementRepository
	categories *repository.AnnouncementCategoryRepository
	residents  *repository.ResidentRepository
	staff      *repository.StaffRepository
	notifSvc   *NotificationService
}

func NewAnnouncementService(
	repo *repository.AnnouncementRepository,
	categories *repository.AnnouncementCategoryRepository,
	residents *repository.ResidentRepository,
	staff *repository.StaffRepository,
	notifSvc *NotificationService,
) *AnnouncementService {
	return &AnnouncementService{
		repo:       repo,
		categories: categories,
		residents:  residents,
		staff:      staff,
		notifSvc:   notifSvc,
	}
}

type CreateAnnouncementInput struct {
	Title         string
	Content       string
	CategoryID    uint
	IsPinned      bool
	IsUrgent      bool
	ValidUntil    *time.Time
	AttachmentURL string
}

// Publish creates an announcement and fans a notification out to every
// active resident except the author. Committee members and staff with
// the announcement permission may publish.
func (s *AnnouncementService) Publish(authorID uint, in CreateAnnouncementInput) (*models.Announcement, error) {
	if err := s.checkCanPublish(authorID); err != nil {
		return nil, err
	}
	cat, err := s.categories.GetByID(in.CategoryID)
	if err != nil {
		return nil, err
	}
	a := &models.Announcement{
		Title:         in.Title,
		Content:       in.Content,
		CategoryID:    cat.ID,
		AuthorID:      authorID,
		IsPinned:      in.IsPinned,
		IsUrgent:      in.IsUrgent || cat.IsUrgent,
		ValidUntil:    in.ValidUntil,
		AttachmentURL: in.AttachmentURL,
	}
	if err := s.repo.Create(a); err != nil {
		return nil, err
	}
	s.fanOut(a)
	return a, nil
}

func (s *AnnouncementService) fanOut(a *models.Announcement) {
	if s.notifSvc == nil {
		return
	}
	typeName := "new_announcement"
	title := fmt.Sprintf("New Announcement: %s", a.Title)
	if a.IsUrgent {
		typeName = "urgent_announcement"
		title = fmt.Sprintf("URGENT: %s", a.Title)
	}
	s.notifSvc.NotifyAllResidents(typeName, title, preview(a.Content),
		domain.RelatedRef{Kind: domain.RelatedAnnouncement, ID: a.ID},
		map[string]interface{}{"announcement_id": a.ID, "title": a.Title},
		a.AuthorID)
}

// preview truncates announcement bodies for the notification message.
// Truncation counts runes so a multi-byte character is never split.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= 100 {
		return content
	}
	return string(runes[:100]) + "..."
}

func (s *AnnouncementService) checkCanPublish(userID uint) error {
	if st, err := s.staff.GetByUserID(userID); err == nil {
		if st.CanSendAnnouncements {
			return nil
		}
		return ErrNotAnnouncer
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	res, err := s.residents.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAnnouncer
		}
		return err
	}
	if !res.IsCommitteeMember {
		return ErrNotAnnouncer
	}
	return nil
}

// MarkRead records that a user saw an announcement. Repeated reads are
// no-ops.
func (s *AnnouncementService) MarkRead(announcementID, userID uint) error {
	if _, err := s.repo.GetByID(announcementID); err != nil {
		return err
	}
	return s.repo.MarkRead(announcementID, userID)
}

// Comment posts a comment, optionally threaded under a parent.
func (s *AnnouncementService) Comment(announcementID, authorID uint, content string, parentID *uint) (*models.Comment, error) {
	a, err := s.repo.GetByID(announcementID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{
		AnnouncementID: a.ID,
		AuthorID:       authorID,
		Content:        content,
		ParentID:       parentID,
	}
	if err := s.repo.AddComment(c); err != nil {
		return nil, err
	}
	return c, nil
}
