package handler

import (
	"errors"
	"net/http"
	"strconv"

	"khakiestate/internal/repository"
	"khakiestate/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApproverHandler manages which resident approves bookings per common
// area. Routes behind it are staff-only.
type ApproverHandler struct {
	svc  *service.BookingService
	repo *repository.ApproverRepository
}

func NewApproverHandler(svc *service.BookingService, repo *repository.ApproverRepository) *ApproverHandler {
	return &ApproverHandler{svc: svc, repo: repo}
}

type AssignApproverRequest struct {
	CommonAreaID uint   `json:"common_area_id" binding:"required"`
	ApproverID   uint   `json:"approver_id" binding:"required"`
	Notes        string `json:"notes"`
}

func (h *ApproverHandler) Assign(c *gin.Context) {
	var req AssignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.svc.AssignApprover(req.CommonAreaID, req.ApproverID, req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "common area not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assign failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": a})
}

func (h *ApproverHandler) List(c *gin.Context) {
	if areaParam := c.Query("area_id"); areaParam != "" {
		areaID, _ := strconv.ParseUint(areaParam, 10, 64)
		list, err := h.repo.ListByArea(uint(areaID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignments": list})
		return
	}
	list, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": list})
}
