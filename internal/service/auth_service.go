package service

import (
	"errors"
	"time"

	"khakiestate/config"
	"khakiestate/internal/auth"
	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/notify"
	"khakiestate/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrAccountClosed  = errors.New("account is deactivated")
)

type AuthService struct {
	cfg       *config.Config
	userRepo  *repository.UserRepository
	residents *repository.ResidentRepository
	staff     *repository.StaffRepository
	notifSvc  *NotificationService
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, residents *repository.ResidentRepository, staff *repository.StaffRepository, notifSvc *NotificationService) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, residents: residents, staff: staff, notifSvc: notifSvc}
}

type RegisterResidentInput struct {
	Username     string
	Email        string
	Password     string
	Name         string
	FlatNumber   string
	Block        string
	PhoneNumber  string
	ResidentType string
}

// RegisterResident creates the account with its resident profile and
// sends the welcome notification.
func (s *AuthService) RegisterResident(in RegisterResidentInput) (*models.User, string, string, error) {
	if err := s.checkUnique(in.Email, in.Username); err != nil {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	residentType := in.ResidentType
	if residentType == "" {
		residentType = domain.ResidentOwner
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		UserType:     domain.UserTypeResident,
		IsActive:     true,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	profile := &models.Resident{
		UserID:             u.ID,
		FlatNumber:         in.FlatNumber,
		Block:              in.Block,
		PhoneNumber:        in.PhoneNumber,
		ResidentType:       residentType,
		EmailNotifications: true,
	}
	if err := s.residents.Create(profile); err != nil {
		return nil, "", "", err
	}
	if s.notifSvc != nil {
		_, _ = s.notifSvc.Notify(u.ID, "welcome_message", "Welcome to The Khaki Estate",
			"Your community account is ready. Announcements, bookings and maintenance requests all live here.",
			domain.RelatedRef{}, nil, notify.Channel(""))
	}
	return s.issueTokens(u)
}

type RegisterStaffInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	EmployeeID  string
	StaffRole   string
	Department  string
	PhoneNumber string
}

// RegisterStaff creates a staff account; capability flags derive from
// the role.
func (s *AuthService) RegisterStaff(in RegisterStaffInput) (*models.User, string, string, error) {
	if err := s.checkUnique(in.Email, in.Username); err != nil {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		UserType:     domain.UserTypeStaff,
		IsActive:     true,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	now := time.Now()
	profile := &models.Staff{
		UserID:             u.ID,
		EmployeeID:         in.EmployeeID,
		StaffRole:          in.StaffRole,
		Department:         in.Department,
		PhoneNumber:        in.PhoneNumber,
		HireDate:           &now,
		IsActive:           true,
		EmailNotifications: true,
	}
	applyRoleCapabilities(profile)
	if err := s.staff.Create(profile); err != nil {
		return nil, "", "", err
	}
	return s.issueTokens(u)
}

// applyRoleCapabilities derives permission flags from the staff role.
func applyRoleCapabilities(st *models.Staff) {
	switch st.StaffRole {
	case domain.RoleFacilityManager, domain.RoleMaintenanceSupervisor:
		st.CanAccessAllMaintenance = true
		st.CanAssignRequests = true
		st.CanCloseRequests = true
		st.CanSendAnnouncements = st.StaffRole == domain.RoleFacilityManager
	case domain.RoleElectrician, domain.RolePlumber:
		st.CanCloseRequests = true
	case domain.RoleAccountant:
		st.CanManageFinances = true
		st.CanSendAnnouncements = true
	case domain.RoleSecurityHead:
		st.CanSendAnnouncements = true
		st.IsAvailable24x7 = true
	}
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if !u.IsActive {
		return nil, "", "", ErrAccountClosed
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.issueTokens(u)
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	if !u.IsActive {
		return "", ErrAccountClosed
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.UserType)
}

func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

func (s *AuthService) checkUnique(email, username string) error {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) issueTokens(u *models.User) (*models.User, string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.UserType)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, "", "", err
	}
	return u, access, refresh, nil
}
