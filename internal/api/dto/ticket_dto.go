package dto

import (
	"time"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
)

// LocationSelector picks a node by ID and/or name; ID wins when both are set.
type LocationSelector struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// LocationRequest carries the five-level selection of a ticket submission.
type LocationRequest struct {
	Building LocationSelector `json:"building"`
	Floor    LocationSelector `json:"floor"`
	Room     LocationSelector `json:"room"`
	Area     LocationSelector `json:"area"`
	Element  LocationSelector `json:"element"`
}

// CreateTicketRequest payload. This is the single ticket-creation schema;
// user-facing and staff-facing clients send the same shape. Status is
// honored only for manager/technician creators.
type CreateTicketRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status,omitempty"`
	Location     LocationRequest       `json:"location"`
	DepartmentID *int64                `json:"department_id,omitempty"`
}

// UpdateTicketRequest payload; absent fields stay unchanged.
type UpdateTicketRequest struct {
	Title        *string                `json:"title,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Category     *domain.TicketCategory `json:"category,omitempty"`
	Location     *LocationRequest       `json:"location,omitempty"`
	Priority     *domain.TicketPriority `json:"priority,omitempty"`
	Status       *domain.TicketStatus   `json:"status,omitempty"`
	AssigneeID   *int64                 `json:"assignee_id,omitempty"`
	ApproverID   *int64                 `json:"approver_id,omitempty"`
	DepartmentID *int64                 `json:"department_id,omitempty"`
}

// TicketLocationResponse echoes the resolved references and display names.
type TicketLocationResponse struct {
	BuildingID   int64  `json:"building_id"`
	FloorID      int64  `json:"floor_id"`
	RoomID       int64  `json:"room_id"`
	AreaID       int64  `json:"area_id"`
	ElementID    int64  `json:"element_id"`
	BuildingName string `json:"building_name"`
	FloorName    string `json:"floor_name"`
	RoomName     string `json:"room_name"`
	AreaName     string `json:"area_name"`
	ElementName  string `json:"element_name"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           int64                  `json:"id"`
	ExternalKey  string                 `json:"external_key"`
	Title        string                 `json:"title"`
	Category     domain.TicketCategory  `json:"category"`
	Priority     domain.TicketPriority  `json:"priority"`
	Status       domain.TicketStatus    `json:"status"`
	Location     TicketLocationResponse `json:"location"`
	CreatedBy    int64                  `json:"created_by"`
	AssigneeID   *int64                 `json:"assignee_id,omitempty"`
	DepartmentID *int64                 `json:"department_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           int64                   `json:"id"`
	ExternalKey  string                  `json:"external_key"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Category     domain.TicketCategory   `json:"category"`
	Priority     domain.TicketPriority   `json:"priority"`
	Status       domain.TicketStatus     `json:"status"`
	Location     TicketLocationResponse  `json:"location"`
	CreatedBy    int64                   `json:"created_by"`
	AssigneeID   *int64                  `json:"assignee_id,omitempty"`
	ApproverID   *int64                  `json:"approver_id,omitempty"`
	DepartmentID *int64                  `json:"department_id,omitempty"`
	Version      int64                   `json:"version"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	ResolvedAt   *time.Time              `json:"resolved_at,omitempty"`
	ClosedAt     *time.Time              `json:"closed_at,omitempty"`
	Comments     []CommentResponse       `json:"comments"`
	Attachments  []AttachmentResponse    `json:"attachments"`
	History      []TicketHistoryResponse `json:"history,omitempty"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse audit entry.
type TicketHistoryResponse struct {
	ID          int64                   `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID int64                   `json:"changed_by_id"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}
