package models

import "time"

// Resident is the housing profile attached to a resident user.
// Never hard-deleted; deactivation flows through User.IsActive.
type Resident struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FlatNumber            string     `gorm:"size:4;not null" json:"flat_number"`
	Block                 string     `gorm:"size:2" json:"block"`
	PhoneNumber           string     `gorm:"size:13" json:"phone_number"`
	AlternatePhone        string     `gorm:"size:13" json:"alternate_phone"`
	ResidentType          string     `gorm:"size:10;default:owner" json:"resident_type"` // owner | tenant | family
	IsCommitteeMember     bool       `gorm:"default:false" json:"is_committee_member"`
	MoveInDate            *time.Time `json:"move_in_date"`
	EmergencyContactName  string     `gorm:"size:100" json:"emergency_contact_name"`
	EmergencyContactPhone string     `gorm:"size:13" json:"emergency_contact_phone"`

	// Notification preferences
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	SMSNotifications   bool `gorm:"default:false" json:"sms_notifications"`
	UrgentOnly         bool `gorm:"default:false" json:"urgent_only"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Resident) TableName() string {
	return "residents"
}
