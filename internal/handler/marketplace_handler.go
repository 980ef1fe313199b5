package handler

import (
	"net/http"
	"strconv"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/middleware"
	"khakiestate/internal/models"
	"khakiestate/internal/repository"

	"github.com/gin-gonic/gin"
)

// Marketplace listings live for 30 days unless the seller acts first.
const listingLifetime = 30 * 24 * time.Hour

type MarketplaceHandler struct {
	repo *repository.MarketplaceRepository
}

func NewMarketplaceHandler(repo *repository.MarketplaceRepository) *MarketplaceHandler {
	return &MarketplaceHandler{repo: repo}
}

type CreateItemRequest struct {
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description"`
	ItemType     string   `json:"item_type" binding:"required,oneof=sell buy service need_service lost found"`
	Price        *float64 `json:"price"`
	ContactPhone string   `json:"contact_phone"`
	Image1URL    string   `json:"image1_url"`
	Image2URL    string   `json:"image2_url"`
	Image3URL    string   `json:"image3_url"`
}

func (h *MarketplaceHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := &models.MarketplaceItem{
		Title:        req.Title,
		Description:  req.Description,
		ItemType:     req.ItemType,
		Price:        req.Price,
		SellerID:     middleware.GetUserID(c),
		ContactPhone: req.ContactPhone,
		Status:       domain.ItemStatusActive,
		ExpiresAt:    time.Now().Add(listingLifetime),
		Image1URL:    req.Image1URL,
		Image2URL:    req.Image2URL,
		Image3URL:    req.Image3URL,
	}
	if err := h.repo.Create(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *MarketplaceHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListActive(c.Query("type"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *MarketplaceHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	item, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active sold removed"`
}

// UpdateStatus lets the seller close or relist their own item.
func (h *MarketplaceHandler) UpdateStatus(c *gin.Context) {
	var req UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	item, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if item.SellerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	item.Status = req.Status
	if req.Status == domain.ItemStatusActive {
		item.ExpiresAt = time.Now().Add(listingLifetime)
	}
	if err := h.repo.Update(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}
