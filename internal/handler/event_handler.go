package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/middleware"
	"khakiestate/internal/models"
	"khakiestate/internal/notify"
	"khakiestate/internal/repository"
	"khakiestate/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventHandler struct {
	repo     *repository.EventRepository
	notifSvc *service.NotificationService
}

func NewEventHandler(repo *repository.EventRepository, notifSvc *service.NotificationService) *EventHandler {
	return &EventHandler{repo: repo, notifSvc: notifSvc}
}

type CreateEventRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	Description   string `json:"description"`
	EventType     string `json:"event_type" binding:"required,oneof=meeting maintenance social festival other"`
	StartDatetime string `json:"start_datetime" binding:"required"` // RFC 3339
	EndDatetime   string `json:"end_datetime" binding:"required"`
	IsAllDay      bool   `json:"is_all_day"`
	Location      string `json:"location"`
	MaxAttendees  *int   `json:"max_attendees"`
	RSVPRequired  bool   `json:"is_rsvp_required"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_datetime (use RFC 3339)"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndDatetime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_datetime (use RFC 3339)"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "end_datetime must be after start_datetime"})
		return
	}
	organizerID := middleware.GetUserID(c)
	e := &models.Event{
		Title:         req.Title,
		Description:   req.Description,
		EventType:     req.EventType,
		StartDatetime: start,
		EndDatetime:   end,
		IsAllDay:      req.IsAllDay,
		Location:      req.Location,
		MaxAttendees:  req.MaxAttendees,
		RSVPRequired:  req.RSVPRequired,
		OrganizerID:   organizerID,
	}
	if err := h.repo.Create(e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	if h.notifSvc != nil {
		h.notifSvc.NotifyAllResidents("event_reminder",
			fmt.Sprintf("New Event: %s", e.Title),
			fmt.Sprintf("%s on %s at %s", e.Title, start.Format("02 Jan 2006 15:04"), e.Location),
			domain.RelatedRef{Kind: domain.RelatedEvent, ID: e.ID},
			map[string]interface{}{"event_id": e.ID, "title": e.Title},
			organizerID)
	}
	c.JSON(http.StatusCreated, gin.H{"event": e})
}

func (h *EventHandler) ListUpcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListUpcoming(time.Now(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	e, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	attending, _ := h.repo.CountYes(e.ID)
	c.JSON(http.StatusOK, gin.H{"event": e, "attending": attending})
}

type RSVPRequest struct {
	Response    string `json:"response" binding:"required,oneof=yes no maybe"`
	GuestsCount int    `json:"guests_count"`
	Comment     string `json:"comment"`
}

// RSVP records or replaces the caller's response to an event.
func (h *EventHandler) RSVP(c *gin.Context) {
	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	e, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	userID := middleware.GetUserID(c)
	rsvp := &models.EventRSVP{
		EventID:     e.ID,
		ResidentID:  userID,
		Response:    req.Response,
		GuestsCount: req.GuestsCount,
		Comment:     req.Comment,
	}
	if err := h.repo.UpsertRSVP(rsvp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rsvp failed"})
		return
	}
	if h.notifSvc != nil && req.Response == domain.RSVPYes && e.OrganizerID != userID {
		_, _ = h.notifSvc.Notify(e.OrganizerID, "event_reminder",
			fmt.Sprintf("RSVP for %s", e.Title),
			fmt.Sprintf("A resident is attending with %d guests.", req.GuestsCount),
			domain.RelatedRef{Kind: domain.RelatedEvent, ID: e.ID},
			map[string]interface{}{"event_id": e.ID}, notify.ChannelInApp)
	}
	c.JSON(http.StatusOK, gin.H{"rsvp": rsvp})
}
