package database

import (
	"errors"
	"fmt"
	"log"
	"os"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// notificationTypeSeeds is the full catalogue of notification types the
// services emit. Seeded idempotently at startup; existing rows keep any
// manual edits to templates or delivery defaults.
var notificationTypeSeeds = []models.NotificationType{
	// Maintenance
	{Name: "new_maintenance_request", TemplateName: "emails/maintenance_request_created.html",
		SMSTemplate:     "New maintenance request #{ticket_number} has been submitted.",
		DefaultDelivery: "email"},
	{Name: "urgent_maintenance_request", TemplateName: "emails/urgent_maintenance_request.html",
		SMSTemplate:     "URGENT: Maintenance request #{ticket_number} requires immediate attention.",
		DefaultDelivery: "both", IsUrgent: true},
	{Name: "maintenance_status_change", TemplateName: "emails/maintenance_status_change.html",
		SMSTemplate:     "Your maintenance request #{ticket_number} status has been updated to {status}.",
		DefaultDelivery: "both"},
	{Name: "maintenance_assigned", TemplateName: "emails/maintenance_assigned.html",
		SMSTemplate:     "Maintenance request #{ticket_number} has been assigned to you.",
		DefaultDelivery: "email"},
	{Name: "maintenance_resident_update", TemplateName: "emails/maintenance_resident_update.html",
		SMSTemplate:     "Resident has added an update to maintenance request #{ticket_number}.",
		DefaultDelivery: "email"},
	// Announcements
	{Name: "new_announcement", TemplateName: "emails/announcement_created.html",
		SMSTemplate:     "New announcement: {title}",
		DefaultDelivery: "email"},
	{Name: "urgent_announcement", TemplateName: "emails/urgent_announcement.html",
		SMSTemplate:     "URGENT ANNOUNCEMENT: {title}",
		DefaultDelivery: "both", IsUrgent: true},
	// Events
	{Name: "event_reminder", TemplateName: "emails/event_reminder.html",
		SMSTemplate:     "Reminder: {title}",
		DefaultDelivery: "email"},
	{Name: "event_cancelled", TemplateName: "emails/event_cancelled.html",
		SMSTemplate:     "Event cancelled: {title}",
		DefaultDelivery: "both", IsUrgent: true},
	// Bookings
	{Name: "booking_pending_approval", TemplateName: "emails/booking_pending_approval.html",
		SMSTemplate:     "Booking {booking_number} for {area} is awaiting your approval.",
		DefaultDelivery: "both"},
	{Name: "booking_approved", TemplateName: "emails/booking_approved.html",
		SMSTemplate:     "Your booking {booking_number} has been approved.",
		DefaultDelivery: "both"},
	{Name: "booking_rejected", TemplateName: "emails/booking_rejected.html",
		SMSTemplate:     "Your booking {booking_number} has been rejected.",
		DefaultDelivery: "both"},
	{Name: "booking_cancelled_by_resident", TemplateName: "emails/booking_cancelled_by_resident.html",
		SMSTemplate:     "Booking {booking_number} has been cancelled by the resident.",
		DefaultDelivery: "email"},
	{Name: "booking_confirmed", TemplateName: "emails/booking_confirmed.html",
		SMSTemplate:     "Your booking {booking_number} has been confirmed.",
		DefaultDelivery: "email"},
	{Name: "booking_cancelled", TemplateName: "emails/booking_cancelled.html",
		SMSTemplate:     "Your booking {booking_number} has been cancelled.",
		DefaultDelivery: "email"},
	// System
	{Name: "welcome_message", TemplateName: "emails/welcome_message.html",
		SMSTemplate:     "Welcome to The Khaki Estate community platform!",
		DefaultDelivery: "email"},
	{Name: "account_activated", TemplateName: "emails/account_activated.html",
		SMSTemplate:     "Your account has been activated. Welcome to The Khaki Estate!",
		DefaultDelivery: "email"},
}

// requiredNotificationTypes are the names the services actually emit.
// Startup fails when any is missing so a broken seed never turns into a
// silent runtime error.
var requiredNotificationTypes = []string{
	"new_maintenance_request",
	"urgent_maintenance_request",
	"maintenance_status_change",
	"maintenance_assigned",
	"new_announcement",
	"urgent_announcement",
	"event_reminder",
	"booking_pending_approval",
	"booking_approved",
	"booking_rejected",
	"booking_cancelled_by_resident",
	"welcome_message",
}

// SeedNotificationTypes inserts missing notification types.
func SeedNotificationTypes(db *gorm.DB) error {
	for i := range notificationTypeSeeds {
		seed := notificationTypeSeeds[i]
		var existing models.NotificationType
		err := db.Where("name = ?", seed.Name).First(&existing).Error
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&seed).Error; err != nil {
				return fmt.Errorf("seed notification type %s: %w", seed.Name, err)
			}
		default:
			return err
		}
	}
	return nil
}

// ValidateNotificationTypes verifies every type name the services emit
// has a seeded row.
func ValidateNotificationTypes(db *gorm.DB) error {
	var names []string
	if err := db.Model(&models.NotificationType{}).Pluck("name", &names).Error; err != nil {
		return err
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	var missing []string
	for _, want := range requiredNotificationTypes {
		if !have[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("notification types missing from database: %v", missing)
	}
	return nil
}

var maintenanceCategorySeeds = []models.MaintenanceCategory{
	{Name: "Electrical Emergency", PriorityLevel: domain.PriorityEmergency, EstimatedResolutionHours: 2},
	{Name: "Plumbing Emergency", PriorityLevel: domain.PriorityEmergency, EstimatedResolutionHours: 4},
	{Name: "Gas Leak", PriorityLevel: domain.PriorityEmergency, EstimatedResolutionHours: 2},
	{Name: "Security Breach", PriorityLevel: domain.PriorityEmergency, EstimatedResolutionHours: 2},
	{Name: "Electrical Issues", PriorityLevel: domain.PriorityHigh, EstimatedResolutionHours: 24},
	{Name: "Plumbing Issues", PriorityLevel: domain.PriorityHigh, EstimatedResolutionHours: 24},
	{Name: "Water Supply", PriorityLevel: domain.PriorityHigh, EstimatedResolutionHours: 12},
	{Name: "Elevator Issues", PriorityLevel: domain.PriorityHigh, EstimatedResolutionHours: 24},
	{Name: "Appliance Repair", PriorityLevel: domain.PriorityMedium, EstimatedResolutionHours: 48},
	{Name: "Carpentry Work", PriorityLevel: domain.PriorityMedium, EstimatedResolutionHours: 72},
	{Name: "Pest Control", PriorityLevel: domain.PriorityMedium, EstimatedResolutionHours: 48},
	{Name: "Common Area Issues", PriorityLevel: domain.PriorityMedium, EstimatedResolutionHours: 48},
	{Name: "Painting Work", PriorityLevel: domain.PriorityLow, EstimatedResolutionHours: 168},
	{Name: "General Maintenance", PriorityLevel: domain.PriorityLow, EstimatedResolutionHours: 96},
	{Name: "Other", PriorityLevel: domain.PriorityLow, EstimatedResolutionHours: 96},
}

var announcementCategorySeeds = []models.AnnouncementCategory{
	{Name: "General", ColorCode: "#007bff"},
	{Name: "Maintenance", ColorCode: "#fd7e14"},
	{Name: "Events", ColorCode: "#28a745"},
	{Name: "Emergency", ColorCode: "#dc3545", IsUrgent: true},
	{Name: "Committee", ColorCode: "#6f42c1"},
}

// SeedCategories inserts missing maintenance and announcement categories.
func SeedCategories(db *gorm.DB) error {
	for i := range maintenanceCategorySeeds {
		seed := maintenanceCategorySeeds[i]
		var existing models.MaintenanceCategory
		if err := db.Where("name = ?", seed.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&seed).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	for i := range announcementCategorySeeds {
		seed := announcementCategorySeeds[i]
		var existing models.AnnouncementCategory
		if err := db.Where("name = ?", seed.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&seed).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the initial facility manager account when the users
// table is empty.
func SeedAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "khaki-admin-2024"
		log.Printf("[seed] ADMIN_PASSWORD not set, using the default; change it")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin password hash failed: %v", err)
		return
	}
	admin := &models.User{
		Username:     "facility_manager",
		Email:        "manager@thekhakiestate.com",
		PasswordHash: string(hash),
		Name:         "Facility Manager",
		UserType:     domain.UserTypeStaff,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[seed] admin create failed: %v", err)
		return
	}
	profile := &models.Staff{
		UserID:                  admin.ID,
		EmployeeID:              "EMP-0001",
		StaffRole:               domain.RoleFacilityManager,
		IsActive:                true,
		CanAccessAllMaintenance: true,
		CanAssignRequests:       true,
		CanCloseRequests:        true,
		CanSendAnnouncements:    true,
		EmailNotifications:      true,
	}
	if err := db.Create(profile).Error; err != nil {
		log.Printf("[seed] admin staff profile failed: %v", err)
		return
	}
	log.Printf("[seed] created facility manager account %s", admin.Email)
}
