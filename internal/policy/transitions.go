package policy

import "github.com/facilitydesk/helpdesk-service/internal/domain"

// allowedTransitions is the explicit status state machine. CLOSED and
// REJECTED are terminal.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusAssigned, domain.TicketStatusRejected},
	domain.TicketStatusAssigned:   {domain.TicketStatusInProgress, domain.TicketStatusOnHold, domain.TicketStatusRejected},
	domain.TicketStatusInProgress: {domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusApproved},
	domain.TicketStatusOnHold:     {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusApproved},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusApproved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
	domain.TicketStatusRejected:   {},
}

// TransitionAllowed reports whether the source to target pair is in the
// transition table.
func TransitionAllowed(from, to domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
