package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"khakiestate/internal/domain"
	"khakiestate/internal/middleware"
	"khakiestate/internal/repository"
	"khakiestate/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MaintenanceHandler struct {
	svc        *service.MaintenanceService
	repo       *repository.MaintenanceRepository
	categories *repository.MaintenanceCategoryRepository
}

func NewMaintenanceHandler(svc *service.MaintenanceService, repo *repository.MaintenanceRepository, categories *repository.MaintenanceCategoryRepository) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc, repo: repo, categories: categories}
}

type CreateTicketRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	Description   string `json:"description" binding:"required"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	Location      string `json:"location"`
	Priority      int    `json:"priority" binding:"omitempty,min=1,max=4"`
	AttachmentURL string `json:"attachment_url"`
}

func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.svc.CreateTicket(middleware.GetUserID(c), service.CreateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Location:      req.Location,
		Priority:      req.Priority,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		log.Printf("[maintenance] create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": m})
}

// List returns the caller's own tickets for residents, and a filterable
// view of everything for staff.
func (h *MaintenanceHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if middleware.GetUserType(c) == domain.UserTypeStaff {
		list, err := h.repo.ListAll(c.Query("status"), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": list})
		return
	}
	list, err := h.repo.ListByResident(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

// ListAssigned returns the tickets assigned to the calling staff member.
func (h *MaintenanceHandler) ListAssigned(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByAssignee(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *MaintenanceHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if middleware.GetUserType(c) == domain.UserTypeResident && m.ResidentID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": m})
}

func (h *MaintenanceHandler) Acknowledge(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Acknowledge(uint(id), middleware.GetUserID(c))
	h.writeTransition(c, m, err)
}

type AssignRequest struct {
	AssigneeID uint `json:"assignee_id" binding:"required"`
}

func (h *MaintenanceHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Assign(uint(id), req.AssigneeID, middleware.GetUserID(c))
	h.writeTransition(c, m, err)
}

func (h *MaintenanceHandler) StartProgress(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.StartProgress(uint(id), middleware.GetUserID(c))
	h.writeTransition(c, m, err)
}

type ResolveRequest struct {
	Note string `json:"note"`
}

func (h *MaintenanceHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	_ = c.ShouldBindJSON(&req)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Resolve(uint(id), middleware.GetUserID(c), req.Note)
	h.writeTransition(c, m, err)
}

func (h *MaintenanceHandler) Close(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Close(uint(id), middleware.GetUserID(c))
	h.writeTransition(c, m, err)
}

type CancelTicketRequest struct {
	Reason string `json:"reason"`
}

func (h *MaintenanceHandler) Cancel(c *gin.Context) {
	var req CancelTicketRequest
	_ = c.ShouldBindJSON(&req)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Cancel(uint(id), middleware.GetUserID(c), req.Reason)
	h.writeTransition(c, m, err)
}

func (h *MaintenanceHandler) writeTransition(c *gin.Context, m interface{}, err error) {
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotAssignable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotTicketOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "request was modified concurrently, retry"})
		default:
			log.Printf("[maintenance] transition failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": m})
}

type SetCostsRequest struct {
	EstimatedCost *float64 `json:"estimated_cost"`
	ActualCost    *float64 `json:"actual_cost"`
}

func (h *MaintenanceHandler) SetCosts(c *gin.Context) {
	var req SetCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.SetCosts(uint(id), req.EstimatedCost, req.ActualCost)
	h.writeTransition(c, m, err)
}

type RateRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

func (h *MaintenanceHandler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	m, err := h.svc.Rate(uint(id), middleware.GetUserID(c), req.Rating, req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrNotTicketOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotResolvedYet), errors.Is(err, service.ErrBadRating):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": m})
}

type AddUpdateRequest struct {
	Content       string `json:"content" binding:"required"`
	AttachmentURL string `json:"attachment_url"`
}

func (h *MaintenanceHandler) AddUpdate(c *gin.Context) {
	var req AddUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	u, err := h.svc.AddUpdate(uint(id), middleware.GetUserID(c), req.Content, req.AttachmentURL)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"update": u})
}

func (h *MaintenanceHandler) ListUpdates(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	list, err := h.repo.ListUpdates(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": list})
}

func (h *MaintenanceHandler) ListCategories(c *gin.Context) {
	list, err := h.categories.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}
