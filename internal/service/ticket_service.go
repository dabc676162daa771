package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/events"
	"github.com/facilitydesk/helpdesk-service/internal/location"
	"github.com/facilitydesk/helpdesk-service/internal/policy"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows: creation through the location
// resolver, policy-gated reads and updates, and admin deletion with cascade.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	history     repository.TicketHistoryRepository
	departments repository.DepartmentRepository
	resolver    *location.Resolver
	dispatcher  events.Dispatcher
	maxUpload   int64
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	HistoryRepo    repository.TicketHistoryRepository
	DepartmentRepo repository.DepartmentRepository
	Resolver       *location.Resolver
	Dispatcher     events.Dispatcher
	MaxUploadBytes int64
}

// TicketCreateInput describes ticket creation payload. Location may carry
// IDs, names, or a mix; Status is honored only for manager/technician
// creators.
type TicketCreateInput struct {
	Title        string
	Description  string
	Category     domain.TicketCategory
	Priority     domain.TicketPriority
	Status       domain.TicketStatus
	Location     location.Input
	DepartmentID *int64
}

// TicketUpdateInput lists the fields an update wants to change. Nil means
// leave the field alone.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Category     *domain.TicketCategory
	Location     *location.Input
	Priority     *domain.TicketPriority
	Status       *domain.TicketStatus
	AssigneeID   *int64
	ApproverID   *int64
	DepartmentID *int64
}

// TicketListFilter describes listing filters on top of the visibility scope.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// AttachmentInput carries already-decoded upload data.
type AttachmentInput struct {
	FileName string
	MimeType string
	Content  []byte
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		history:     deps.HistoryRepo,
		departments: deps.DepartmentRepo,
		resolver:    deps.Resolver,
		dispatcher:  deps.Dispatcher,
		maxUpload:   deps.MaxUploadBytes,
	}
}

// Create files a new ticket. The creator reference is always the
// authenticated actor regardless of payload content.
func (s *TicketService) Create(ctx context.Context, actor policy.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.ValidTicketCategory(input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	if input.Status != "" && !domain.ValidTicketStatus(input.Status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
	}

	if input.DepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !dept.IsActive {
			return nil, apperrors.NewValidationError("department inactive", map[string]any{"department_id": dept.ID})
		}
	}

	loc, err := s.resolver.Resolve(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ExternalKey:  generateTicketKey(),
		Title:        title,
		Description:  description,
		Category:     input.Category,
		Priority:     priority,
		Status:       policy.InitialStatus(actor, input.Status),
		Location:     *loc,
		CreatedBy:    actor.ID,
		DepartmentID: input.DepartmentID,
	}
	if ticket.DepartmentID == nil {
		ticket.DepartmentID = actor.DepartmentID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			ExternalKey: ticket.ExternalKey,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
			BuildingID:  ticket.Location.BuildingID,
			ElementID:   ticket.Location.ElementID,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket the actor may see.
func (s *TicketService) Get(ctx context.Context, actor policy.Actor, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}
	return ticket, nil
}

// List returns tickets within the actor's visibility scope.
func (s *TicketService) List(ctx context.Context, actor policy.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	policy.ApplyScope(actor, &repoFilter)
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// Update applies a policy-gated field update. Authorization is
// all-or-nothing: one disallowed field rejects the whole payload.
func (s *TicketService) Update(ctx context.Context, actor policy.Actor, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Category != nil && !domain.ValidTicketCategory(*input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": *input.Category})
	}
	if input.Priority != nil && !domain.ValidTicketPriority(*input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	if input.Status != nil && !domain.ValidTicketStatus(*input.Status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}

	var loc *domain.TicketLocation
	if input.Location != nil {
		resolved, err := s.resolver.Resolve(ctx, *input.Location)
		if err != nil {
			return nil, err
		}
		loc = resolved
	}

	changes := policy.TicketChanges{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Location:     loc,
		Priority:     input.Priority,
		Status:       input.Status,
		AssigneeID:   input.AssigneeID,
		ApproverID:   input.ApproverID,
		DepartmentID: input.DepartmentID,
	}
	if err := policy.AuthorizeUpdate(actor, ticket, changes); err != nil {
		return nil, err
	}
	if input.Status != nil {
		if err := policy.AuthorizeStatusChange(actor, ticket.Status, *input.Status); err != nil {
			return nil, err
		}
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssigneeID
	oldPriority := ticket.Priority
	oldApprover := ticket.ApproverID

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if loc != nil {
		ticket.Location = *loc
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		ticket.AssigneeID = input.AssigneeID
	}
	if input.ApproverID != nil {
		ticket.ApproverID = input.ApproverID
	}
	if input.DepartmentID != nil {
		ticket.DepartmentID = input.DepartmentID
	}
	if input.Status != nil {
		policy.ApplyStatusStamps(ticket, *input.Status, time.Now())
		ticket.Status = *input.Status
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("ticket was modified concurrently",
				map[string]any{"ticket_id": ticket.ID})
		}
		return nil, err
	}

	if input.Status != nil && *input.Status != oldStatus {
		s.recordChange(ctx, actor.ID, ticket.ID, domain.ChangeTypeStatus,
			map[string]any{"status": oldStatus}, map[string]any{"status": ticket.Status})
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if input.AssigneeID != nil && !int64PtrEqual(oldAssignee, ticket.AssigneeID) {
		s.recordChange(ctx, actor.ID, ticket.ID, domain.ChangeTypeAssignee,
			map[string]any{"assignee_id": oldAssignee}, map[string]any{"assignee_id": ticket.AssigneeID})
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketAssignedPayload{
				OldAssigneeID: oldAssignee,
				NewAssigneeID: ticket.AssigneeID,
			},
		})
	}
	if input.Priority != nil && *input.Priority != oldPriority {
		s.recordChange(ctx, actor.ID, ticket.ID, domain.ChangeTypePriority,
			map[string]any{"priority": oldPriority}, map[string]any{"priority": ticket.Priority})
	}
	if input.ApproverID != nil && !int64PtrEqual(oldApprover, ticket.ApproverID) {
		s.recordChange(ctx, actor.ID, ticket.ID, domain.ChangeTypeApprover,
			map[string]any{"approver_id": oldApprover}, map[string]any{"approver_id": ticket.ApproverID})
	}

	return ticket, nil
}

// Delete removes a ticket and cascades to its comments, attachments and
// history. The database does not enforce the cascade in all deployments,
// so cleanup happens here, child rows first.
func (s *TicketService) Delete(ctx context.Context, actor policy.Actor, ticketID int64) error {
	if err := policy.AuthorizeDelete(actor); err != nil {
		return err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteByTicket(ctx, ticket.ID); err != nil {
		return err
	}
	if err := s.attachments.DeleteByTicket(ctx, ticket.ID); err != nil {
		return err
	}
	if err := s.history.DeleteByTicket(ctx, ticket.ID); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload:  events.TicketDeletedPayload{ExternalKey: ticket.ExternalKey},
	})
	return nil
}

// AddComment appends a comment to a ticket the actor may see.
func (s *TicketService) AddComment(ctx context.Context, actor policy.Actor, ticketID int64, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// ListComments returns the comment thread of a visible ticket.
func (s *TicketService) ListComments(ctx context.Context, actor policy.Actor, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}
	return s.comments.ListByTicket(ctx, ticket.ID)
}

// AddAttachment stores an uploaded file against a visible ticket. Files
// over the configured ceiling are rejected.
func (s *TicketService) AddAttachment(ctx context.Context, actor policy.Actor, ticketID int64, input AttachmentInput) (*domain.Attachment, error) {
	if input.FileName == "" || len(input.Content) == 0 {
		return nil, apperrors.NewValidationError("file name and content required", nil)
	}
	if s.maxUpload > 0 && int64(len(input.Content)) > s.maxUpload {
		return nil, apperrors.NewValidationError("file exceeds upload limit",
			map[string]any{"max_bytes": s.maxUpload, "size_bytes": len(input.Content)})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}

	uploaderID := actor.ID
	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  int64(len(input.Content)),
		Content:    input.Content,
		UploaderID: &uploaderID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventAttachmentAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.AttachmentAddedPayload{
			AttachmentID: attachment.ID,
			FileName:     attachment.FileName,
			SizeBytes:    attachment.SizeBytes,
		},
	})
	return attachment, nil
}

// ListAttachments returns attachment metadata for a visible ticket.
func (s *TicketService) ListAttachments(ctx context.Context, actor policy.Actor, ticketID int64) ([]domain.Attachment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}
	return s.attachments.ListByTicket(ctx, ticket.ID)
}

// ListHistory returns audit entries for a visible ticket.
func (s *TicketService) ListHistory(ctx context.Context, actor policy.Actor, ticketID int64, limit, offset int) ([]domain.TicketHistory, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not visible to your role")
	}
	return s.history.ListByTicket(ctx, ticket.ID, limit, offset)
}

func (s *TicketService) recordChange(ctx context.Context, actorID, ticketID int64, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor policy.Actor) events.Actor {
	return events.Actor{UserID: actor.ID, Role: actor.Role}
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// stringPreview truncates on rune boundaries; bodies are frequently
// non-ASCII and a byte slice could split a multi-byte character.
func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
