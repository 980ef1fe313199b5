package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	EventType     string         `gorm:"size:20;not null" json:"event_type"`
	StartDatetime time.Time      `gorm:"not null;index" json:"start_datetime"`
	EndDatetime   time.Time      `gorm:"not null" json:"end_datetime"`
	IsAllDay      bool           `gorm:"default:false" json:"is_all_day"`
	Location      string         `gorm:"size:200" json:"location"`
	MaxAttendees  *int           `json:"max_attendees"`
	RSVPRequired  bool           `gorm:"default:false" json:"is_rsvp_required"`
	OrganizerID   uint           `gorm:"not null" json:"organizer_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Organizer User        `gorm:"foreignKey:OrganizerID" json:"-"`
	RSVPs     []EventRSVP `gorm:"foreignKey:EventID" json:"rsvps,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

type EventRSVP struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;uniqueIndex:idx_event_resident" json:"event_id"`
	ResidentID  uint      `gorm:"not null;uniqueIndex:idx_event_resident" json:"resident_id"`
	Response    string    `gorm:"size:5;not null" json:"response"` // yes | no | maybe
	GuestsCount int       `gorm:"default:0" json:"guests_count"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Resident User `gorm:"foreignKey:ResidentID" json:"-"`
}

func (EventRSVP) TableName() string {
	return "event_rsvps"
}
