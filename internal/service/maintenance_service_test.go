package service

import (
	"fmt"
	"testing"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/repository"
	"khakiestate/internal/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type maintenanceEnv struct {
	*testEnv
	svc  *MaintenanceService
	repo *repository.MaintenanceRepository
	cat  *models.MaintenanceCategory
}

func newMaintenanceEnv(t *testing.T) *maintenanceEnv {
	t.Helper()
	env := newTestEnv(t)
	for _, name := range []string{
		"new_maintenance_request", "urgent_maintenance_request",
		"maintenance_status_change", "maintenance_assigned",
	} {
		env.seedType(t, name, "email", false)
	}
	cat := &models.MaintenanceCategory{Name: "Plumbing Issues", PriorityLevel: domain.PriorityHigh, EstimatedResolutionHours: 24}
	require.NoError(t, env.db.Create(cat).Error)
	repo := repository.NewMaintenanceRepository(env.db)
	svc := NewMaintenanceService(
		repo,
		repository.NewMaintenanceCategoryRepository(env.db),
		env.staff,
		sequence.NewGenerator(env.db),
		env.notifSvc,
	)
	return &maintenanceEnv{testEnv: env, svc: svc, repo: repo, cat: cat}
}

func TestCreateTicketNumbersAndNotifiesStaff(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	plumber := env.makeStaff(t, "bob", domain.RolePlumber, nil)
	// Cleaners are not maintenance staff and get no notification.
	cleaner := env.makeStaff(t, "carol", domain.RoleCleaner, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title:       "Leaking tap",
		Description: "Kitchen tap drips",
		CategoryID:  env.cat.ID,
	})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("MNT-%d-0001", year), m.TicketNumber)
	assert.Equal(t, domain.TicketSubmitted, m.Status)
	assert.Equal(t, domain.PriorityHigh, m.Priority)
	require.NotNil(t, m.EstimatedCompletion)

	list, err := env.notifications.ListByRecipient(plumber.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = env.notifications.ListByRecipient(cleaner.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Second ticket gets the next number.
	m2, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Broken light", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("MNT-%d-0002", year), m2.TicketNumber)
}

func TestEmergencyTicketUsesUrgentType(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	manager := env.makeStaff(t, "mgr", domain.RoleFacilityManager, nil)

	_, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Sparking outlet", Description: "x",
		CategoryID: env.cat.ID, Priority: domain.PriorityEmergency,
	})
	require.NoError(t, err)

	list, err := env.notifications.ListByRecipient(manager.ID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Title, "URGENT")
}

func TestWorkflowTimestampsSetOnce(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)
	plumber := env.makeStaff(t, "bob", domain.RolePlumber, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	m, err = env.svc.Acknowledge(m.ID, supervisor.ID)
	require.NoError(t, err)
	require.NotNil(t, m.AcknowledgedAt)
	firstAck := *m.AcknowledgedAt

	m, err = env.svc.Assign(m.ID, plumber.ID, supervisor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketAssigned, m.Status)
	require.NotNil(t, m.AssignedAt)
	require.NotNil(t, m.AssignedToID)
	assert.Equal(t, plumber.ID, *m.AssignedToID)
	assert.True(t, m.AcknowledgedAt.Equal(firstAck))

	m, err = env.svc.StartProgress(m.ID, plumber.ID)
	require.NoError(t, err)
	m, err = env.svc.Resolve(m.ID, plumber.ID, "replaced washer")
	require.NoError(t, err)
	require.NotNil(t, m.ResolvedAt)
	assert.GreaterOrEqual(t, m.ResolutionTime(), time.Duration(0))

	m, err = env.svc.Close(m.ID, supervisor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketClosed, m.Status)
	require.NotNil(t, m.ClosedAt)
}

func TestAssignFromSubmittedImpliesAcknowledge(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)
	plumber := env.makeStaff(t, "bob", domain.RolePlumber, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	m, err = env.svc.Assign(m.ID, plumber.ID, supervisor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketAssigned, m.Status)
	assert.NotNil(t, m.AcknowledgedAt)
	assert.NotNil(t, m.AssignedAt)
}

func TestAssignRejectsNonMaintenanceStaff(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)
	cleaner := env.makeStaff(t, "carol", domain.RoleCleaner, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Assign(m.ID, cleaner.ID, supervisor.ID)
	assert.ErrorIs(t, err, ErrNotAssignable)
}

func TestInvalidTransitionsRejected(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	// submitted cannot jump straight to resolved or closed.
	_, err = env.svc.Resolve(m.ID, supervisor.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.svc.Close(m.ID, supervisor.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelOnlyPreResolutionAndOnlyOwner(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	other := env.makeResident(t, "eve", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)
	plumber := env.makeStaff(t, "bob", domain.RolePlumber, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(m.ID, other.ID, "")
	assert.ErrorIs(t, err, ErrNotTicketOwner)

	m, err = env.svc.Assign(m.ID, plumber.ID, supervisor.ID)
	require.NoError(t, err)
	m, err = env.svc.StartProgress(m.ID, plumber.ID)
	require.NoError(t, err)
	m, err = env.svc.Resolve(m.ID, plumber.ID, "")
	require.NoError(t, err)

	// Resolved tickets cannot be cancelled.
	_, err = env.svc.Cancel(m.ID, resident.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRateRequiresResolutionAndOwnership(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	other := env.makeResident(t, "eve", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)
	plumber := env.makeStaff(t, "bob", domain.RolePlumber, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Rate(m.ID, resident.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotResolvedYet)

	m, err = env.svc.Assign(m.ID, plumber.ID, supervisor.ID)
	require.NoError(t, err)
	m, err = env.svc.StartProgress(m.ID, plumber.ID)
	require.NoError(t, err)
	m, err = env.svc.Resolve(m.ID, plumber.ID, "done")
	require.NoError(t, err)

	_, err = env.svc.Rate(m.ID, other.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotTicketOwner)
	_, err = env.svc.Rate(m.ID, resident.ID, 6, "")
	assert.ErrorIs(t, err, ErrBadRating)

	m, err = env.svc.Rate(m.ID, resident.ID, 4, "quick fix")
	require.NoError(t, err)
	require.NotNil(t, m.ResidentRating)
	assert.Equal(t, 4, *m.ResidentRating)
}

func TestSaveVersionedDetectsConcurrentWrite(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	stale, err := env.repo.GetByID(m.ID)
	require.NoError(t, err)
	fresh, err := env.repo.GetByID(m.ID)
	require.NoError(t, err)

	fresh.Location = "kitchen"
	require.NoError(t, env.repo.SaveVersioned(fresh))

	stale.Location = "bathroom"
	err = env.repo.SaveVersioned(stale)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestStatusChangeNotifiesResident(t *testing.T) {
	env := newMaintenanceEnv(t)
	resident := env.makeResident(t, "alice", nil)
	supervisor := env.makeStaff(t, "sup", domain.RoleMaintenanceSupervisor, nil)

	m, err := env.svc.CreateTicket(resident.ID, CreateTicketInput{
		Title: "Leak", Description: "x", CategoryID: env.cat.ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Acknowledge(m.ID, supervisor.ID)
	require.NoError(t, err)

	list, err := env.notifications.ListByRecipient(resident.ID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, domain.TicketAcknowledged)
}
