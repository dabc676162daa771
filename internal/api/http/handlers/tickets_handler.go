package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk-service/internal/api/dto"
	"github.com/facilitydesk/helpdesk-service/internal/auth"
	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/location"
	"github.com/facilitydesk/helpdesk-service/internal/service"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints for all roles; the policy layer
// inside the service decides what each role may see and change.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		Status:       req.Status,
		Location:     locationInput(req.Location),
		DepartmentID: req.DepartmentID,
	}
	ticket, err := h.service.Create(c.Context(), principal.Actor(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.service.List(c.Context(), principal.Actor(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	actor := principal.Actor()
	ticket, err := h.service.Get(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	attachments, err := h.service.ListAttachments(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments, attachments, nil)})
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		Status:       req.Status,
		AssigneeID:   req.AssigneeID,
		ApproverID:   req.ApproverID,
		DepartmentID: req.DepartmentID,
	}
	if req.Location != nil {
		loc := locationInput(*req.Location)
		input.Location = &loc
	}
	ticket, err := h.service.Update(c.Context(), principal.Actor(), ticketID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), principal.Actor(), ticketID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), principal.Actor(), ticketID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AddAttachment POST /tickets/:id/attachments. Expects a multipart form
// with a "file" part; decoding happens here, the service only sees bytes.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file part required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file part", nil)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return apperrors.MapError(err)
	}

	input := service.AttachmentInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  content,
	}
	attachment, err := h.service.AddAttachment(c.Context(), principal.Actor(), ticketID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.ListHistory(c.Context(), principal.Actor(), ticketID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func locationInput(req dto.LocationRequest) location.Input {
	return location.Input{
		Building: location.Selector{ID: req.Building.ID, Name: req.Building.Name},
		Floor:    location.Selector{ID: req.Floor.ID, Name: req.Floor.Name},
		Room:     location.Selector{ID: req.Room.ID, Name: req.Room.Name},
		Area:     location.Selector{ID: req.Area.ID, Name: req.Area.Name},
		Element:  location.Selector{ID: req.Element.ID, Name: req.Element.Name},
	}
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketLocation(ticket *domain.Ticket) dto.TicketLocationResponse {
	return dto.TicketLocationResponse{
		BuildingID:   ticket.Location.BuildingID,
		FloorID:      ticket.Location.FloorID,
		RoomID:       ticket.Location.RoomID,
		AreaID:       ticket.Location.AreaID,
		ElementID:    ticket.Location.ElementID,
		BuildingName: ticket.Location.BuildingName,
		FloorName:    ticket.Location.FloorName,
		RoomName:     ticket.Location.RoomName,
		AreaName:     ticket.Location.AreaName,
		ElementName:  ticket.Location.ElementName,
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		Title:        ticket.Title,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		Location:     ticketLocation(ticket),
		CreatedBy:    ticket.CreatedBy,
		AssigneeID:   ticket.AssigneeID,
		DepartmentID: ticket.DepartmentID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment, attachments []domain.Attachment, history []domain.TicketHistory) dto.TicketDetailResponse {
	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, commentResponse(&comments[i]))
	}
	attachmentItems := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		attachmentItems = append(attachmentItems, attachmentResponse(&attachments[i]))
	}
	historyItems := make([]dto.TicketHistoryResponse, 0, len(history))
	for i := range history {
		historyItems = append(historyItems, historyResponse(&history[i]))
	}
	return dto.TicketDetailResponse{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		Location:     ticketLocation(ticket),
		CreatedBy:    ticket.CreatedBy,
		AssigneeID:   ticket.AssigneeID,
		ApproverID:   ticket.ApproverID,
		DepartmentID: ticket.DepartmentID,
		Version:      ticket.Version,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
		ClosedAt:     ticket.ClosedAt,
		Comments:     commentItems,
		Attachments:  attachmentItems,
		History:      historyItems,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        attachment.ID,
		FileName:  attachment.FileName,
		MimeType:  attachment.MimeType,
		SizeBytes: attachment.SizeBytes,
		CreatedAt: attachment.CreatedAt,
	}
}

func historyResponse(entry *domain.TicketHistory) dto.TicketHistoryResponse {
	return dto.TicketHistoryResponse{
		ID:          entry.ID,
		ChangeType:  entry.ChangeType,
		ChangedByID: entry.ChangedByID,
		OldValue:    entry.OldValue,
		NewValue:    entry.NewValue,
		CreatedAt:   entry.CreatedAt,
	}
}
