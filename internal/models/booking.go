package models

import (
	"time"
)

// CommonArea is a bookable shared amenity.
type CommonArea struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	Name               string  `gorm:"size:100;not null" json:"name"`
	Description        string  `gorm:"type:text" json:"description"`
	Capacity           int     `gorm:"default:1" json:"capacity"`
	BookingFee         float64 `gorm:"default:0" json:"booking_fee"`
	AdvanceBookingDays int     `gorm:"default:30" json:"advance_booking_days"`
	MinBookingHours    int     `gorm:"default:1" json:"min_booking_hours"`
	MaxBookingHours    int     `gorm:"default:24" json:"max_booking_hours"`
	IsActive           bool    `gorm:"default:true" json:"is_active"`
	AvailableStart     string  `gorm:"size:5;default:06:00" json:"available_start_time"`
	AvailableEnd       string  `gorm:"size:5;default:22:00" json:"available_end_time"`
}

func (CommonArea) TableName() string {
	return "common_areas"
}

// ApproverAssignment maps a common area to the single resident authorized
// to approve its bookings. Activating an assignment deactivates every
// other assignment for the same area.
type ApproverAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CommonAreaID uint      `gorm:"not null;index" json:"common_area_id"`
	ApproverID   uint      `gorm:"not null;index" json:"approver_id"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	CommonArea CommonArea `gorm:"foreignKey:CommonAreaID" json:"-"`
	Approver   User       `gorm:"foreignKey:ApproverID" json:"-"`
}

func (ApproverAssignment) TableName() string {
	return "approver_assignments"
}

// Booking is a resident's reservation of a common area. Status moves
// pending -> approved|rejected by the designated approver; approved
// bookings can then be confirmed, cancelled, or completed.
type Booking struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BookingNumber string    `gorm:"uniqueIndex;size:20;not null" json:"booking_number"`
	CommonAreaID  uint      `gorm:"not null;index" json:"common_area_id"`
	ResidentID    uint      `gorm:"not null;index" json:"resident_id"`
	BookingDate   time.Time `gorm:"not null" json:"booking_date"`
	StartTime     string    `gorm:"size:5;not null" json:"start_time"` // HH:MM
	EndTime       string    `gorm:"size:5;not null" json:"end_time"`
	Purpose       string    `gorm:"size:200" json:"purpose"`
	GuestsCount   int       `gorm:"default:0" json:"guests_count"`
	Status        string    `gorm:"size:10;default:pending;index" json:"status"`
	TotalFee      float64   `gorm:"default:0" json:"total_fee"`
	IsPaid        bool      `gorm:"default:false" json:"is_paid"`

	DesignatedApproverID *uint      `json:"designated_approver_id"`
	ApprovedByID         *uint      `json:"approved_by_id"`
	ApprovedAt           *time.Time `json:"approved_at"`
	RejectionReason      string     `gorm:"type:text" json:"rejection_reason"`

	// Audit trail for status mutations
	StatusChangedByID *uint      `json:"status_changed_by_id"`
	StatusChangedAt   *time.Time `json:"status_changed_at"`

	// Optimistic lock; bumped on every versioned save.
	Version int `gorm:"default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CommonArea         CommonArea `gorm:"foreignKey:CommonAreaID" json:"common_area,omitempty"`
	Resident           User       `gorm:"foreignKey:ResidentID" json:"-"`
	DesignatedApprover *User      `gorm:"foreignKey:DesignatedApproverID" json:"-"`
	ApprovedBy         *User      `gorm:"foreignKey:ApprovedByID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}

// DurationHours computes the booked span in hours. An end time at or
// before the start time spans into the next day (overnight booking).
func (b *Booking) DurationHours() float64 {
	start, err := time.Parse("15:04", b.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", b.EndTime)
	if err != nil {
		return 0
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start).Hours()
}

// CanBeApprovedBy reports whether actor is allowed to decide this booking.
func (b *Booking) CanBeApprovedBy(actorID uint) bool {
	return b.DesignatedApproverID != nil && *b.DesignatedApproverID == actorID && b.Status == "pending"
}
