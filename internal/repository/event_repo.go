package repository

import (
	"time"

	"khakiestate/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *models.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var e models.Event
	err := r.db.Preload("RSVPs").First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListUpcoming returns events ending after now, soonest first.
func (r *EventRepository) ListUpcoming(now time.Time, limit, offset int) ([]models.Event, error) {
	var list []models.Event
	err := r.db.Where("end_datetime > ?", now).
		Order("start_datetime").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *EventRepository) Update(e *models.Event) error {
	return r.db.Save(e).Error
}

// UpsertRSVP creates or replaces the resident's response for the event.
func (r *EventRepository) UpsertRSVP(rsvp *models.EventRSVP) error {
	var existing models.EventRSVP
	err := r.db.Where("event_id = ? AND resident_id = ?", rsvp.EventID, rsvp.ResidentID).First(&existing).Error
	if err == nil {
		existing.Response = rsvp.Response
		existing.GuestsCount = rsvp.GuestsCount
		existing.Comment = rsvp.Comment
		*rsvp = existing
		return r.db.Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Create(rsvp).Error
}

func (r *EventRepository) CountYes(eventID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.EventRSVP{}).
		Where("event_id = ? AND response = ?", eventID, "yes").Count(&n).Error
	return n, err
}
