package models

import (
	"time"
)

type MaintenanceCategory struct {
	ID                       uint   `gorm:"primaryKey" json:"id"`
	Name                     string `gorm:"size:50;not null" json:"name"`
	PriorityLevel            int    `gorm:"default:1" json:"priority_level"` // 1=Low .. 4=Emergency
	EstimatedResolutionHours int    `gorm:"default:24" json:"estimated_resolution_hours"`
}

func (MaintenanceCategory) TableName() string {
	return "maintenance_categories"
}

// MaintenanceRequest is a resident-submitted ticket. Status moves through
// submitted -> acknowledged -> assigned -> in_progress -> resolved -> closed,
// with cancelled reachable from any pre-resolution state. Each status owns a
// timestamp that is set once, on the first transition into that status.
type MaintenanceRequest struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TicketNumber string `gorm:"uniqueIndex;size:20;not null" json:"ticket_number"`
	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	CategoryID   uint   `gorm:"not null;index" json:"category_id"`
	ResidentID   uint   `gorm:"not null;index" json:"resident_id"`
	Location     string `gorm:"size:100" json:"location"`
	Priority     int    `gorm:"default:2" json:"priority"`
	Status       string `gorm:"size:15;default:submitted;index" json:"status"`

	AssignedToID *uint `json:"assigned_to_id"`
	AssignedByID *uint `json:"assigned_by_id"`

	// First-write-wins workflow timestamps
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	AssignedAt     *time.Time `json:"assigned_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ClosedAt       *time.Time `json:"closed_at"`

	EstimatedCost       *float64   `json:"estimated_cost"`
	ActualCost          *float64   `json:"actual_cost"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`

	ResidentRating   *int   `json:"resident_rating"` // 1..5 after resolution
	ResidentFeedback string `gorm:"type:text" json:"resident_feedback"`

	AttachmentURL string `gorm:"size:512" json:"attachment_url"`

	// Optimistic lock; bumped on every versioned save.
	Version int `gorm:"default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category   MaintenanceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Resident   User                `gorm:"foreignKey:ResidentID" json:"-"`
	AssignedTo *User               `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	AssignedBy *User               `gorm:"foreignKey:AssignedByID" json:"-"`
	Updates    []MaintenanceUpdate `gorm:"foreignKey:RequestID" json:"updates,omitempty"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// ResolutionTime returns how long the ticket took from creation to
// resolution, or zero if it is not resolved yet.
func (m *MaintenanceRequest) ResolutionTime() time.Duration {
	if m.ResolvedAt == nil {
		return 0
	}
	return m.ResolvedAt.Sub(m.CreatedAt)
}

// IsOverdue reports whether the ticket blew past its estimated completion.
func (m *MaintenanceRequest) IsOverdue(now time.Time) bool {
	if m.EstimatedCompletion == nil {
		return false
	}
	switch m.Status {
	case "resolved", "closed", "cancelled":
		return false
	}
	return now.After(*m.EstimatedCompletion)
}

type MaintenanceUpdate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RequestID       uint      `gorm:"not null;index" json:"request_id"`
	AuthorID        uint      `gorm:"not null" json:"author_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	StatusChangedTo string    `gorm:"size:15" json:"status_changed_to"`
	AttachmentURL   string    `gorm:"size:512" json:"attachment_url"`
	CreatedAt       time.Time `json:"created_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (MaintenanceUpdate) TableName() string {
	return "maintenance_updates"
}
