package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"khakiestate/internal/middleware"
	"khakiestate/internal/repository"
	"khakiestate/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookingHandler struct {
	svc   *service.BookingService
	repo  *repository.BookingRepository
	areas *repository.CommonAreaRepository
}

func NewBookingHandler(svc *service.BookingService, repo *repository.BookingRepository, areas *repository.CommonAreaRepository) *BookingHandler {
	return &BookingHandler{svc: svc, repo: repo, areas: areas}
}

type CreateBookingRequest struct {
	CommonAreaID uint   `json:"common_area_id" binding:"required"`
	BookingDate  string `json:"booking_date" binding:"required"` // YYYY-MM-DD
	StartTime    string `json:"start_time" binding:"required"`   // HH:MM
	EndTime      string `json:"end_time" binding:"required"`
	Purpose      string `json:"purpose"`
	GuestsCount  int    `json:"guests_count"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_date format (use YYYY-MM-DD)"})
		return
	}
	b, err := h.svc.CreateBooking(middleware.GetUserID(c), service.CreateBookingInput{
		CommonAreaID: req.CommonAreaID,
		BookingDate:  date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Purpose:      req.Purpose,
		GuestsCount:  req.GuestsCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "common area not found"})
		case errors.Is(err, service.ErrAreaInactive), errors.Is(err, service.ErrBadTimeRange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[booking] create failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByResident(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// ListPendingApprovals returns the pending bookings waiting on the
// caller's decision.
func (h *BookingHandler) ListPendingApprovals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListPendingForApprover(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	userID := middleware.GetUserID(c)
	if b.ResidentID != userID && (b.DesignatedApproverID == nil || *b.DesignatedApproverID != userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.Approve(uint(id), middleware.GetUserID(c))
	h.writeDecision(c, b, err)
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *BookingHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.Reject(uint(id), middleware.GetUserID(c), req.Reason)
	h.writeDecision(c, b, err)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.Confirm(uint(id), middleware.GetUserID(c))
	h.writeDecision(c, b, err)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.Cancel(uint(id), middleware.GetUserID(c))
	h.writeDecision(c, b, err)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.Complete(uint(id), middleware.GetUserID(c))
	h.writeDecision(c, b, err)
}

func (h *BookingHandler) MarkPaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.svc.MarkPaid(uint(id), middleware.GetUserID(c))
	h.writeDecision(c, b, err)
}

func (h *BookingHandler) writeDecision(c *gin.Context, b interface{}, err error) {
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, service.ErrNotApprover), errors.Is(err, service.ErrNotBookingOwner),
			errors.Is(err, service.ErrNotFinanceStaff):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotPending), errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "booking was modified concurrently, retry"})
		default:
			log.Printf("[booking] update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ListAreas(c *gin.Context) {
	list, err := h.areas.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"areas": list})
}
