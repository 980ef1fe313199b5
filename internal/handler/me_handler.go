package handler

import (
	"errors"
	"net/http"

	"khakiestate/internal/domain"
	"khakiestate/internal/middleware"
	"khakiestate/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	userRepo  *repository.UserRepository
	residents *repository.ResidentRepository
	staff     *repository.StaffRepository
}

func NewMeHandler(userRepo *repository.UserRepository, residents *repository.ResidentRepository, staff *repository.StaffRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, residents: residents, staff: staff}
}

// GetProfile returns the current user with the resident or staff
// profile attached.
func (h *MeHandler) GetProfile(c *gin.Context) {
	u, err := h.userRepo.GetByIDWithProfile(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type UpdatePreferencesRequest struct {
	EmailNotifications *bool `json:"email_notifications"`
	SMSNotifications   *bool `json:"sms_notifications"`
	UrgentOnly         *bool `json:"urgent_only"`
}

// UpdatePreferences patches the notification preference flags. Fields
// left out of the body keep their current value.
func (h *MeHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	switch middleware.GetUserType(c) {
	case domain.UserTypeResident:
		res, err := h.residents.GetByUserID(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		if req.EmailNotifications != nil {
			res.EmailNotifications = *req.EmailNotifications
		}
		if req.SMSNotifications != nil {
			res.SMSNotifications = *req.SMSNotifications
		}
		if req.UrgentOnly != nil {
			res.UrgentOnly = *req.UrgentOnly
		}
		if err := h.residents.Update(res); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"preferences": gin.H{
			"email_notifications": res.EmailNotifications,
			"sms_notifications":   res.SMSNotifications,
			"urgent_only":         res.UrgentOnly,
		}})
	case domain.UserTypeStaff:
		st, err := h.staff.GetByUserID(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		if req.EmailNotifications != nil {
			st.EmailNotifications = *req.EmailNotifications
		}
		if req.SMSNotifications != nil {
			st.SMSNotifications = *req.SMSNotifications
		}
		if req.UrgentOnly != nil {
			st.UrgentOnly = *req.UrgentOnly
		}
		if err := h.staff.Update(st); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"preferences": gin.H{
			"email_notifications": st.EmailNotifications,
			"sms_notifications":   st.SMSNotifications,
			"urgent_only":         st.UrgentOnly,
		}})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown user type"})
	}
}

// RegisterFCMToken saves the device token for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.FCMToken = req.Token
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type UpdateContactRequest struct {
	PhoneNumber           string `json:"phone_number"`
	AlternatePhone        string `json:"alternate_phone"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

// UpdateContact edits a resident's contact details.
func (h *MeHandler) UpdateContact(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.residents.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if req.PhoneNumber != "" {
		res.PhoneNumber = req.PhoneNumber
	}
	if req.AlternatePhone != "" {
		res.AlternatePhone = req.AlternatePhone
	}
	if req.EmergencyContactName != "" {
		res.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != "" {
		res.EmergencyContactPhone = req.EmergencyContactPhone
	}
	if err := h.residents.Update(res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resident": res})
}
