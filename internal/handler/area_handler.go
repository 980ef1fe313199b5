package handler

import (
	"errors"
	"net/http"
	"strconv"

	"khakiestate/internal/models"
	"khakiestate/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AreaHandler manages the common-area catalogue. Writes are staff-only.
type AreaHandler struct {
	areas *repository.CommonAreaRepository
}

func NewAreaHandler(areas *repository.CommonAreaRepository) *AreaHandler {
	return &AreaHandler{areas: areas}
}

type CreateAreaRequest struct {
	Name               string  `json:"name" binding:"required,max=100"`
	Description        string  `json:"description"`
	Capacity           int     `json:"capacity" binding:"required,min=1"`
	BookingFee         float64 `json:"booking_fee" binding:"min=0"`
	AdvanceBookingDays int     `json:"advance_booking_days"`
	MinBookingHours    int     `json:"min_booking_hours"`
	MaxBookingHours    int     `json:"max_booking_hours"`
	AvailableStart     string  `json:"available_start_time"`
	AvailableEnd       string  `json:"available_end_time"`
}

func (h *AreaHandler) Create(c *gin.Context) {
	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	area := &models.CommonArea{
		Name:               req.Name,
		Description:        req.Description,
		Capacity:           req.Capacity,
		BookingFee:         req.BookingFee,
		AdvanceBookingDays: req.AdvanceBookingDays,
		MinBookingHours:    req.MinBookingHours,
		MaxBookingHours:    req.MaxBookingHours,
		IsActive:           true,
		AvailableStart:     req.AvailableStart,
		AvailableEnd:       req.AvailableEnd,
	}
	if area.AdvanceBookingDays == 0 {
		area.AdvanceBookingDays = 30
	}
	if area.MinBookingHours == 0 {
		area.MinBookingHours = 1
	}
	if area.MaxBookingHours == 0 {
		area.MaxBookingHours = 24
	}
	if area.AvailableStart == "" {
		area.AvailableStart = "06:00"
	}
	if area.AvailableEnd == "" {
		area.AvailableEnd = "22:00"
	}
	if err := h.areas.Create(area); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"area": area})
}

type UpdateAreaRequest struct {
	Description     *string  `json:"description"`
	Capacity        *int     `json:"capacity"`
	BookingFee      *float64 `json:"booking_fee"`
	MinBookingHours *int     `json:"min_booking_hours"`
	MaxBookingHours *int     `json:"max_booking_hours"`
	IsActive        *bool    `json:"is_active"`
	AvailableStart  *string  `json:"available_start_time"`
	AvailableEnd    *string  `json:"available_end_time"`
}

func (h *AreaHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	area, err := h.areas.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "common area not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	var req UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Description != nil {
		area.Description = *req.Description
	}
	if req.Capacity != nil {
		area.Capacity = *req.Capacity
	}
	if req.BookingFee != nil {
		area.BookingFee = *req.BookingFee
	}
	if req.MinBookingHours != nil {
		area.MinBookingHours = *req.MinBookingHours
	}
	if req.MaxBookingHours != nil {
		area.MaxBookingHours = *req.MaxBookingHours
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}
	if req.AvailableStart != nil {
		area.AvailableStart = *req.AvailableStart
	}
	if req.AvailableEnd != nil {
		area.AvailableEnd = *req.AvailableEnd
	}
	if err := h.areas.Update(area); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": area})
}
