package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

func ptr[T any](v T) *T { return &v }

func TestApplyScope(t *testing.T) {
	dept := int64(5)

	tests := []struct {
		name  string
		actor Actor
		check func(t *testing.T, f repository.TicketFilter)
	}{
		{
			name:  "admin sees everything",
			actor: Actor{ID: 1, Role: domain.RoleAdmin},
			check: func(t *testing.T, f repository.TicketFilter) {
				assert.Nil(t, f.CreatedBy)
				assert.Nil(t, f.AssigneeOrUnassigned)
				assert.Nil(t, f.DepartmentID)
			},
		},
		{
			name:  "manager scoped to department",
			actor: Actor{ID: 2, Role: domain.RoleManager, DepartmentID: &dept},
			check: func(t *testing.T, f repository.TicketFilter) {
				require.NotNil(t, f.DepartmentID)
				assert.Equal(t, dept, *f.DepartmentID)
			},
		},
		{
			name:  "manager without department sees nothing",
			actor: Actor{ID: 2, Role: domain.RoleManager},
			check: func(t *testing.T, f repository.TicketFilter) {
				assert.True(t, f.MatchNone)
				assert.Nil(t, f.DepartmentID)
				assert.Nil(t, f.CreatedBy)
				assert.Nil(t, f.AssigneeOrUnassigned)
			},
		},
		{
			name:  "technician scoped to own or unassigned",
			actor: Actor{ID: 3, Role: domain.RoleTechnician},
			check: func(t *testing.T, f repository.TicketFilter) {
				require.NotNil(t, f.AssigneeOrUnassigned)
				assert.Equal(t, int64(3), *f.AssigneeOrUnassigned)
				assert.Nil(t, f.CreatedBy)
			},
		},
		{
			name:  "user scoped to own submissions",
			actor: Actor{ID: 4, Role: domain.RoleUser},
			check: func(t *testing.T, f repository.TicketFilter) {
				require.NotNil(t, f.CreatedBy)
				assert.Equal(t, int64(4), *f.CreatedBy)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var filter repository.TicketFilter
			ApplyScope(tc.actor, &filter)
			tc.check(t, filter)
		})
	}
}

func TestCanView(t *testing.T) {
	deptA, deptB := int64(1), int64(2)
	assignee := int64(30)

	ticket := &domain.Ticket{
		CreatedBy:    10,
		AssigneeID:   &assignee,
		DepartmentID: &deptA,
	}
	unassigned := &domain.Ticket{CreatedBy: 10, DepartmentID: &deptA}

	assert.True(t, CanView(Actor{ID: 99, Role: domain.RoleAdmin}, ticket))

	assert.True(t, CanView(Actor{ID: 20, Role: domain.RoleManager, DepartmentID: &deptA}, ticket))
	assert.False(t, CanView(Actor{ID: 20, Role: domain.RoleManager, DepartmentID: &deptB}, ticket))
	assert.False(t, CanView(Actor{ID: 20, Role: domain.RoleManager}, ticket))

	assert.True(t, CanView(Actor{ID: 30, Role: domain.RoleTechnician}, ticket))
	assert.False(t, CanView(Actor{ID: 31, Role: domain.RoleTechnician}, ticket))
	assert.True(t, CanView(Actor{ID: 31, Role: domain.RoleTechnician}, unassigned))

	assert.True(t, CanView(Actor{ID: 10, Role: domain.RoleUser}, ticket))
	assert.False(t, CanView(Actor{ID: 11, Role: domain.RoleUser}, ticket))
}

func TestInitialStatus(t *testing.T) {
	user := Actor{Role: domain.RoleUser}
	tech := Actor{Role: domain.RoleTechnician}
	manager := Actor{Role: domain.RoleManager}
	admin := Actor{Role: domain.RoleAdmin}

	assert.Equal(t, domain.TicketStatusOpen, InitialStatus(user, ""))
	assert.Equal(t, domain.TicketStatusOpen, InitialStatus(user, domain.TicketStatusAssigned))
	assert.Equal(t, domain.TicketStatusAssigned, InitialStatus(tech, domain.TicketStatusAssigned))
	assert.Equal(t, domain.TicketStatusInProgress, InitialStatus(manager, domain.TicketStatusInProgress))
	assert.Equal(t, domain.TicketStatusOpen, InitialStatus(manager, ""))
	// admins create on behalf of others rarely; they still start at OPEN
	assert.Equal(t, domain.TicketStatusOpen, InitialStatus(admin, domain.TicketStatusAssigned))
}

func TestAuthorizeUpdateUserTriageRejection(t *testing.T) {
	actor := Actor{ID: 10, Role: domain.RoleUser}
	own := &domain.Ticket{CreatedBy: 10}

	// descriptive fields on own ticket are fine
	err := AuthorizeUpdate(actor, own, TicketChanges{Title: ptr("new title")})
	assert.NoError(t, err)

	// any triage field rejects the whole change set, even on own ticket
	triage := []TicketChanges{
		{Status: ptr(domain.TicketStatusAssigned)},
		{AssigneeID: ptr(int64(30))},
		{ApproverID: ptr(int64(40))},
		{Priority: ptr(domain.TicketPriorityHigh)},
		{DepartmentID: ptr(int64(5))},
		{Title: ptr("ok"), Priority: ptr(domain.TicketPriorityHigh)},
	}
	for _, changes := range triage {
		err := AuthorizeUpdate(actor, own, changes)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	}

	// someone else's ticket is off limits entirely
	err = AuthorizeUpdate(actor, &domain.Ticket{CreatedBy: 11}, TicketChanges{Title: ptr("x")})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAuthorizeUpdateTechnician(t *testing.T) {
	actor := Actor{ID: 30, Role: domain.RoleTechnician}
	changes := TicketChanges{Status: ptr(domain.TicketStatusInProgress)}

	// unassigned tickets are claimable
	assert.NoError(t, AuthorizeUpdate(actor, &domain.Ticket{}, changes))
	// own assignment is workable
	assert.NoError(t, AuthorizeUpdate(actor, &domain.Ticket{AssigneeID: ptr(int64(30))}, changes))
	// someone else's assignment is not
	err := AuthorizeUpdate(actor, &domain.Ticket{AssigneeID: ptr(int64(31))}, changes)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAuthorizeUpdateManagerAndAdmin(t *testing.T) {
	ticket := &domain.Ticket{CreatedBy: 10, AssigneeID: ptr(int64(31))}
	changes := TicketChanges{
		Status:     ptr(domain.TicketStatusAssigned),
		AssigneeID: ptr(int64(32)),
		Priority:   ptr(domain.TicketPriorityCritical),
	}

	assert.NoError(t, AuthorizeUpdate(Actor{ID: 20, Role: domain.RoleManager}, ticket, changes))
	assert.NoError(t, AuthorizeUpdate(Actor{ID: 99, Role: domain.RoleAdmin}, ticket, changes))
}

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusAssigned},
		{domain.TicketStatusOpen, domain.TicketStatusRejected},
		{domain.TicketStatusAssigned, domain.TicketStatusInProgress},
		{domain.TicketStatusAssigned, domain.TicketStatusOnHold},
		{domain.TicketStatusAssigned, domain.TicketStatusRejected},
		{domain.TicketStatusInProgress, domain.TicketStatusOnHold},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved},
		{domain.TicketStatusInProgress, domain.TicketStatusApproved},
		{domain.TicketStatusOnHold, domain.TicketStatusInProgress},
		{domain.TicketStatusOnHold, domain.TicketStatusResolved},
		{domain.TicketStatusOnHold, domain.TicketStatusApproved},
		{domain.TicketStatusResolved, domain.TicketStatusClosed},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress},
		{domain.TicketStatusApproved, domain.TicketStatusClosed},
	}
	for _, tr := range allowed {
		assert.True(t, TransitionAllowed(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	forbidden := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress},
		{domain.TicketStatusOpen, domain.TicketStatusClosed},
		{domain.TicketStatusClosed, domain.TicketStatusOpen},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress},
		{domain.TicketStatusRejected, domain.TicketStatusOpen},
		{domain.TicketStatusRejected, domain.TicketStatusAssigned},
		{domain.TicketStatusResolved, domain.TicketStatusApproved},
		{domain.TicketStatusApproved, domain.TicketStatusInProgress},
	}
	for _, tr := range forbidden {
		assert.False(t, TransitionAllowed(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestAuthorizeStatusChange(t *testing.T) {
	manager := Actor{Role: domain.RoleManager}
	admin := Actor{Role: domain.RoleAdmin}

	// no-op transitions always pass
	assert.NoError(t, AuthorizeStatusChange(manager, domain.TicketStatusClosed, domain.TicketStatusClosed))

	assert.NoError(t, AuthorizeStatusChange(manager, domain.TicketStatusOpen, domain.TicketStatusAssigned))

	err := AuthorizeStatusChange(manager, domain.TicketStatusOpen, domain.TicketStatusClosed)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	// terminal states stay terminal for everyone but admins
	err = AuthorizeStatusChange(manager, domain.TicketStatusRejected, domain.TicketStatusOpen)
	require.Error(t, err)
	assert.NoError(t, AuthorizeStatusChange(admin, domain.TicketStatusRejected, domain.TicketStatusOpen))
	assert.NoError(t, AuthorizeStatusChange(admin, domain.TicketStatusOpen, domain.TicketStatusClosed))
}

func TestApplyStatusStamps(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	ticket := &domain.Ticket{}
	ApplyStatusStamps(ticket, domain.TicketStatusResolved, first)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, first, *ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)

	// reopened and resolved again: the first stamp survives
	ApplyStatusStamps(ticket, domain.TicketStatusResolved, later)
	assert.Equal(t, first, *ticket.ResolvedAt)

	ApplyStatusStamps(ticket, domain.TicketStatusClosed, later)
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, later, *ticket.ClosedAt)

	ApplyStatusStamps(ticket, domain.TicketStatusClosed, later.Add(time.Hour))
	assert.Equal(t, later, *ticket.ClosedAt)

	// non-terminal statuses stamp nothing
	fresh := &domain.Ticket{}
	ApplyStatusStamps(fresh, domain.TicketStatusInProgress, first)
	assert.Nil(t, fresh.ResolvedAt)
	assert.Nil(t, fresh.ClosedAt)
}

func TestAuthorizeDelete(t *testing.T) {
	assert.NoError(t, AuthorizeDelete(Actor{Role: domain.RoleAdmin}))
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleTechnician, domain.RoleManager} {
		err := AuthorizeDelete(Actor{Role: role})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	}
}
