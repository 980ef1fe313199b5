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

type AnnouncementHandler struct {
	svc        *service.AnnouncementService
	repo       *repository.AnnouncementRepository
	categories *repository.AnnouncementCategoryRepository
}

func NewAnnouncementHandler(svc *service.AnnouncementService, repo *repository.AnnouncementRepository, categories *repository.AnnouncementCategoryRepository) *AnnouncementHandler {
	return &AnnouncementHandler{svc: svc, repo: repo, categories: categories}
}

type CreateAnnouncementRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	Content       string `json:"content" binding:"required"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	IsPinned      bool   `json:"is_pinned"`
	IsUrgent      bool   `json:"is_urgent"`
	ValidUntil    string `json:"valid_until"` // optional, YYYY-MM-DD
	AttachmentURL string `json:"attachment_url"`
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until format (use YYYY-MM-DD)"})
			return
		}
		validUntil = &t
	}
	a, err := h.svc.Publish(middleware.GetUserID(c), service.CreateAnnouncementInput{
		Title:         req.Title,
		Content:       req.Content,
		CategoryID:    req.CategoryID,
		IsPinned:      req.IsPinned,
		IsUrgent:      req.IsUrgent,
		ValidUntil:    validUntil,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAnnouncer):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		default:
			log.Printf("[announcement] create failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"announcement": a})
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": list})
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	a, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcement": a})
}

func (h *AnnouncementHandler) MarkRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.svc.MarkRead(uint(id), middleware.GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type CommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

func (h *AnnouncementHandler) Comment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	comment, err := h.svc.Comment(uint(id), middleware.GetUserID(c), req.Content, req.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comment failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *AnnouncementHandler) ListComments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	list, err := h.repo.ListComments(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

func (h *AnnouncementHandler) ListCategories(c *gin.Context) {
	list, err := h.categories.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}
