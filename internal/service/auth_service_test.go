package service

import (
	"testing"
	"time"

	"khakiestate/config"
	"khakiestate/internal/auth"
	"khakiestate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := newTestEnv(t)
	env.seedType(t, "welcome_message", "email", false)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessExpiry:  30 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "khakiestate-test",
		},
	}
	svc := NewAuthService(cfg, env.users, env.residents, env.staff, env.notifSvc)
	return env, svc
}

func TestRegisterResidentCreatesProfileAndWelcome(t *testing.T) {
	env, svc := newAuthEnv(t)

	u, access, refresh, err := svc.RegisterResident(RegisterResidentInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "sup3rsecret",
		Name:        "Alice Kumar",
		FlatNumber:  "101",
		PhoneNumber: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeResident, u.UserType)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	res, err := env.residents.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "101", res.FlatNumber)
	assert.Equal(t, domain.ResidentOwner, res.ResidentType)
	assert.True(t, res.EmailNotifications)

	// Welcome notification lands on signup.
	list, err := env.notifications.ListByRecipient(u.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	_, svc := newAuthEnv(t)
	in := RegisterResidentInput{
		Username: "alice", Email: "alice@example.com", Password: "sup3rsecret",
		Name: "Alice", FlatNumber: "101", PhoneNumber: "9876543210",
	}
	_, _, _, err := svc.RegisterResident(in)
	require.NoError(t, err)

	_, _, _, err = svc.RegisterResident(in)
	assert.ErrorIs(t, err, ErrEmailExists)

	in.Email = "alice2@example.com"
	_, _, _, err = svc.RegisterResident(in)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterStaffDerivesCapabilities(t *testing.T) {
	env, svc := newAuthEnv(t)

	u, _, _, err := svc.RegisterStaff(RegisterStaffInput{
		Username: "mgr", Email: "mgr@example.com", Password: "sup3rsecret",
		Name: "Manager", EmployeeID: "EMP-100",
		StaffRole: domain.RoleFacilityManager, PhoneNumber: "9876500000",
	})
	require.NoError(t, err)

	st, err := env.staff.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.True(t, st.CanAccessAllMaintenance)
	assert.True(t, st.CanAssignRequests)
	assert.True(t, st.CanSendAnnouncements)
	assert.True(t, st.CanHandleMaintenance())
}

func TestLoginAndRefresh(t *testing.T) {
	_, svc := newAuthEnv(t)
	_, _, _, err := svc.RegisterResident(RegisterResidentInput{
		Username: "alice", Email: "alice@example.com", Password: "sup3rsecret",
		Name: "Alice", FlatNumber: "101", PhoneNumber: "9876543210",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@example.com", "sup3rsecret")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	u, access, refresh, err := svc.Login("alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, access)

	newAccess, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)

	// An access token is not a refresh token.
	_, err = svc.Refresh(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLoginBlockedForDeactivatedAccount(t *testing.T) {
	env, svc := newAuthEnv(t)
	u, _, _, err := svc.RegisterResident(RegisterResidentInput{
		Username: "alice", Email: "alice@example.com", Password: "sup3rsecret",
		Name: "Alice", FlatNumber: "101", PhoneNumber: "9876543210",
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Table("users").Where("id = ?", u.ID).Update("is_active", false).Error)

	_, _, _, err = svc.Login("alice@example.com", "sup3rsecret")
	assert.ErrorIs(t, err, ErrAccountClosed)
}

func TestChangePassword(t *testing.T) {
	_, svc := newAuthEnv(t)
	u, _, _, err := svc.RegisterResident(RegisterResidentInput{
		Username: "alice", Email: "alice@example.com", Password: "sup3rsecret",
		Name: "Alice", FlatNumber: "101", PhoneNumber: "9876543210",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "newpassword1"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "sup3rsecret", "newpassword1"))

	_, _, _, err = svc.Login("alice@example.com", "newpassword1")
	require.NoError(t, err)
}
