package models

import (
	"time"

	"gorm.io/gorm"
)

type AnnouncementCategory struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:50;not null" json:"name"`
	ColorCode string `gorm:"size:7;default:#007bff" json:"color_code"`
	Icon      string `gorm:"size:50" json:"icon"`
	IsUrgent  bool   `gorm:"default:false" json:"is_urgent"`
}

func (AnnouncementCategory) TableName() string {
	return "announcement_categories"
}

type Announcement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	AuthorID      uint           `gorm:"not null;index" json:"author_id"`
	IsPinned      bool           `gorm:"default:false" json:"is_pinned"`
	IsUrgent      bool           `gorm:"default:false" json:"is_urgent"`
	ValidUntil    *time.Time     `json:"valid_until"`
	AttachmentURL string         `gorm:"size:512" json:"attachment_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Category AnnouncementCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Author   User                 `gorm:"foreignKey:AuthorID" json:"-"`
	Comments []Comment            `gorm:"foreignKey:AnnouncementID" json:"comments,omitempty"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// AnnouncementRead tracks which users have read an announcement.
type AnnouncementRead struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AnnouncementID uint      `gorm:"not null;uniqueIndex:idx_announcement_reader" json:"announcement_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_announcement_reader" json:"user_id"`
	ReadAt         time.Time `json:"read_at"`
}

func (AnnouncementRead) TableName() string {
	return "announcement_reads"
}

type Comment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AnnouncementID uint      `gorm:"not null;index" json:"announcement_id"`
	AuthorID       uint      `gorm:"not null" json:"author_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ParentID       *uint     `json:"parent_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
