package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusApproved   TicketStatus = "APPROVED"
	TicketStatusRejected   TicketStatus = "REJECTED"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(status TicketStatus) bool {
	switch status {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress, TicketStatusOnHold,
		TicketStatusResolved, TicketStatusClosed, TicketStatusApproved, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(priority TicketPriority) bool {
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketCategory classifies the kind of issue reported.
type TicketCategory string

const (
	TicketCategoryIT             TicketCategory = "IT"
	TicketCategoryMaintenance    TicketCategory = "MAINTENANCE"
	TicketCategoryProduction     TicketCategory = "PRODUCTION"
	TicketCategorySecurity       TicketCategory = "SECURITY"
	TicketCategoryAdministrative TicketCategory = "ADMINISTRATIVE"
)

// ValidTicketCategory reports whether the value is a known category.
func ValidTicketCategory(category TicketCategory) bool {
	switch category {
	case TicketCategoryIT, TicketCategoryMaintenance, TicketCategoryProduction,
		TicketCategorySecurity, TicketCategoryAdministrative:
		return true
	}
	return false
}

// Ticket is the aggregate for issue reports filed against a location.
// ResolvedAt and ClosedAt are stamped once, on the transition into the
// matching status. Version is an optimistic-concurrency counter compared
// on every update.
type Ticket struct {
	ID          int64
	ExternalKey string
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus

	Location TicketLocation

	CreatedBy    int64
	AssigneeID   *int64
	ApproverID   *int64
	DepartmentID *int64

	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	ClosedAt   *time.Time
}
