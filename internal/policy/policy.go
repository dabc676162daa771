package policy

import (
	"time"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// Actor is the authenticated identity a request is evaluated against.
type Actor struct {
	ID           int64
	Role         domain.Role
	DepartmentID *int64
}

// TicketChanges lists the fields an update wants to touch. A nil pointer
// means the field is left alone. Authorization is all-or-nothing: one
// disallowed field rejects the whole set.
type TicketChanges struct {
	Title        *string
	Description  *string
	Category     *domain.TicketCategory
	Location     *domain.TicketLocation
	Priority     *domain.TicketPriority
	Status       *domain.TicketStatus
	AssigneeID   *int64
	ApproverID   *int64
	DepartmentID *int64
}

func (ch TicketChanges) touchesTriageFields() bool {
	return ch.Status != nil || ch.AssigneeID != nil || ch.ApproverID != nil ||
		ch.Priority != nil || ch.DepartmentID != nil
}

// ApplyScope narrows a listing filter to what the actor may see:
// users see what they created, technicians what is assigned to them or
// unassigned, managers their department, admins everything.
func ApplyScope(actor Actor, filter *repository.TicketFilter) {
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleManager:
		// a manager without a department has an empty scope, not an
		// unscoped one; listings must agree with CanView
		if actor.DepartmentID == nil {
			filter.MatchNone = true
			return
		}
		filter.DepartmentID = actor.DepartmentID
	case domain.RoleTechnician:
		id := actor.ID
		filter.AssigneeOrUnassigned = &id
	default:
		id := actor.ID
		filter.CreatedBy = &id
	}
}

// CanView reports whether a single ticket is visible to the actor, by the
// same table ApplyScope encodes for listings.
func CanView(actor Actor, ticket *domain.Ticket) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return actor.DepartmentID != nil && ticket.DepartmentID != nil &&
			*actor.DepartmentID == *ticket.DepartmentID
	case domain.RoleTechnician:
		return ticket.AssigneeID == nil || *ticket.AssigneeID == actor.ID
	default:
		return ticket.CreatedBy == actor.ID
	}
}

// InitialStatus decides the status a new ticket starts in. Managers and
// technicians may pre-triage at creation time; everyone else starts at OPEN.
func InitialStatus(actor Actor, requested domain.TicketStatus) domain.TicketStatus {
	if requested == "" {
		return domain.TicketStatusOpen
	}
	if actor.Role == domain.RoleManager || actor.Role == domain.RoleTechnician {
		return requested
	}
	return domain.TicketStatusOpen
}

// AuthorizeUpdate gates a field update. Rules are evaluated in privilege
// order and the first matching rule decides.
func AuthorizeUpdate(actor Actor, ticket *domain.Ticket, changes TicketChanges) error {
	switch actor.Role {
	case domain.RoleUser:
		if changes.touchesTriageFields() {
			return apperrors.NewForbidden("users may not change status, assignee, approver, priority, or department")
		}
		if ticket.CreatedBy != actor.ID {
			return apperrors.NewForbidden("not your ticket")
		}
		return nil
	case domain.RoleTechnician:
		if ticket.AssigneeID != nil && *ticket.AssigneeID != actor.ID {
			return apperrors.NewForbidden("ticket is assigned to another technician")
		}
		return nil
	case domain.RoleManager, domain.RoleAdmin:
		return nil
	}
	return apperrors.NewForbidden("unknown role")
}

// AuthorizeStatusChange validates a transition against the explicit state
// machine. Admins bypass the table; they need an escape hatch for repair.
func AuthorizeStatusChange(actor Actor, from, to domain.TicketStatus) error {
	if from == to {
		return nil
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if !TransitionAllowed(from, to) {
		return apperrors.NewValidationError("invalid status transition",
			map[string]any{"from": from, "to": to})
	}
	return nil
}

// ApplyStatusStamps sets resolved/closed timestamps on the transition into
// the matching state. Stamps are set exactly once and never supplied by
// the client; re-sending the same status leaves them untouched.
func ApplyStatusStamps(ticket *domain.Ticket, newStatus domain.TicketStatus, now time.Time) {
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}
}

// AuthorizeDelete permits hard deletion, admin only.
func AuthorizeDelete(actor Actor) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete tickets")
	}
	return nil
}
