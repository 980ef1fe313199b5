package models

import (
	"time"

	"khakiestate/internal/domain"
)

// Staff is the employment profile attached to a staff user.
type Staff struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	EmployeeID     string     `gorm:"uniqueIndex;size:20;not null" json:"employee_id"`
	StaffRole      string     `gorm:"size:30;not null;index" json:"staff_role"`
	Department     string     `gorm:"size:50" json:"department"`
	PhoneNumber    string     `gorm:"size:13" json:"phone_number"`
	AlternatePhone string     `gorm:"size:13" json:"alternate_phone"`
	Employment     string     `gorm:"size:15;default:full_time" json:"employment_status"`
	HireDate       *time.Time `json:"hire_date"`
	ReportingToID  *uint      `json:"reporting_to_id"`

	// Work permissions
	CanAccessAllMaintenance bool `gorm:"default:false" json:"can_access_all_maintenance"`
	CanAssignRequests       bool `gorm:"default:false" json:"can_assign_requests"`
	CanCloseRequests        bool `gorm:"default:false" json:"can_close_requests"`
	CanManageFinances       bool `gorm:"default:false" json:"can_manage_finances"`
	CanSendAnnouncements    bool `gorm:"default:false" json:"can_send_announcements"`

	WorkSchedule    string `gorm:"size:100" json:"work_schedule"`
	IsAvailable24x7 bool   `gorm:"default:false" json:"is_available_24x7"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`

	// Notification preferences
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	SMSNotifications   bool `gorm:"default:false" json:"sms_notifications"`
	UrgentOnly         bool `gorm:"default:false" json:"urgent_only"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User        User   `gorm:"foreignKey:UserID" json:"-"`
	ReportingTo *Staff `gorm:"foreignKey:ReportingToID" json:"-"`
}

func (Staff) TableName() string {
	return "staff"
}

// CanHandleMaintenance reports whether this staff member is a valid
// assignee for maintenance tickets.
func (s *Staff) CanHandleMaintenance() bool {
	if s.CanAccessAllMaintenance {
		return true
	}
	switch s.StaffRole {
	case domain.RoleFacilityManager, domain.RoleMaintenanceSupervisor,
		domain.RoleElectrician, domain.RolePlumber:
		return true
	}
	return false
}
