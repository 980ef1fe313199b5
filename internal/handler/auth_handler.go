package handler

import (
	"log"
	"net/http"

	"khakiestate/internal/middleware"
	"khakiestate/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterResidentRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=64"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	FlatNumber   string `json:"flat_number" binding:"required"`
	Block        string `json:"block"`
	PhoneNumber  string `json:"phone_number" binding:"required"`
	ResidentType string `json:"resident_type" binding:"omitempty,oneof=owner tenant family"`
}

type RegisterStaffRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required"`
	EmployeeID  string `json:"employee_id" binding:"required"`
	StaffRole   string `json:"staff_role" binding:"required,oneof=facility_manager accountant security_head maintenance_supervisor electrician plumber cleaner gardener"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) RegisterResident(c *gin.Context) {
	var req RegisterResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.RegisterResident(service.RegisterResidentInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		FlatNumber:   req.FlatNumber,
		Block:        req.Block,
		PhoneNumber:  req.PhoneNumber,
		ResidentType: req.ResidentType,
	})
	if err != nil {
		h.writeRegisterError(c, req.Email, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.RegisterStaff(service.RegisterStaffInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		EmployeeID:  req.EmployeeID,
		StaffRole:   req.StaffRole,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.writeRegisterError(c, req.Email, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) writeRegisterError(c *gin.Context, email string, err error) {
	switch err {
	case service.ErrEmailExists, service.ErrUsernameExists:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[auth] register failed: email=%s err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCreds:
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case service.ErrAccountClosed:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth] login failed: email=%s err=%v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChangePassword(middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is wrong"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
