package models

import (
	"time"

	"khakiestate/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Name         string         `gorm:"size:255" json:"name"`
	UserType     string         `gorm:"size:10;not null;index" json:"user_type"` // resident | staff
	FCMToken     string         `gorm:"size:512" json:"-"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Resident *Resident `gorm:"foreignKey:UserID" json:"resident,omitempty"`
	Staff    *Staff    `gorm:"foreignKey:UserID" json:"staff,omitempty"`
}

func (u *User) IsResident() bool    { return u.UserType == domain.UserTypeResident }
func (u *User) IsStaffMember() bool { return u.UserType == domain.UserTypeStaff }

// FullName returns the display name, falling back to the username.
func (u *User) FullName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
