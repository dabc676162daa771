package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
)

// ErrVersionConflict is returned when an update loses the optimistic
// concurrency race: the ticket's stored version no longer matches the one
// the caller read.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketFilter captures listing parameters. Visibility scoping fields are
// set by the policy layer, never directly from client input.
type TicketFilter struct {
	// MatchNone forces an empty result set; set by the policy layer when
	// an actor's visibility scope cannot match any ticket.
	MatchNone bool

	CreatedBy *int64
	// AssigneeOrUnassigned matches tickets assigned to the given user or
	// not assigned at all (technician scope).
	AssigneeOrUnassigned *int64
	AssigneeID           *int64
	DepartmentID         *int64
	Statuses             []domain.TicketStatus
	Priorities           []domain.TicketPriority
	Categories           []domain.TicketCategory
	SearchTerm           *string
	CreatedFrom          *time.Time
	CreatedTo            *time.Time
	Limit                int
	Offset               int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists the ticket if its stored version still equals
	// ticket.Version, then increments the version. Returns
	// ErrVersionConflict when the compare fails.
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, title, description, category, priority, status,
               building_id, floor_id, room_id, area_id, element_id,
               building_name, floor_name, room_name, area_name, element_name,
               created_by, assignee_id, approver_id, department_id,
               version, created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, title, description, category, priority, status,
            building_id, floor_id, room_id, area_id, element_id,
            building_name, floor_name, room_name, area_name, element_name,
            created_by, assignee_id, approver_id, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.Location.BuildingID,
		ticket.Location.FloorID,
		ticket.Location.RoomID,
		ticket.Location.AreaID,
		ticket.Location.ElementID,
		ticket.Location.BuildingName,
		ticket.Location.FloorName,
		ticket.Location.RoomName,
		ticket.Location.AreaName,
		ticket.Location.ElementName,
		ticket.CreatedBy,
		ticket.AssigneeID,
		ticket.ApproverID,
		ticket.DepartmentID,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            building_id=$6, floor_id=$7, room_id=$8, area_id=$9, element_id=$10,
            building_name=$11, floor_name=$12, room_name=$13, area_name=$14, element_name=$15,
            assignee_id=$16, approver_id=$17, department_id=$18,
            resolved_at=$19, closed_at=$20, version=version+1, updated_at=NOW()
        WHERE id=$21 AND version=$22`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.Location.BuildingID,
		ticket.Location.FloorID,
		ticket.Location.RoomID,
		ticket.Location.AreaID,
		ticket.Location.ElementID,
		ticket.Location.BuildingName,
		ticket.Location.FloorName,
		ticket.Location.RoomName,
		ticket.Location.AreaName,
		ticket.Location.ElementName,
		ticket.AssigneeID,
		ticket.ApproverID,
		ticket.DepartmentID,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE external_key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if filter.MatchNone {
		return nil, nil
	}

	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssigneeOrUnassigned != nil {
		args = append(args, *filter.AssigneeOrUnassigned)
		clauses = append(clauses, fmt.Sprintf("(assignee_id=$%d OR assignee_id IS NULL)", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Location.BuildingID,
		&ticket.Location.FloorID,
		&ticket.Location.RoomID,
		&ticket.Location.AreaID,
		&ticket.Location.ElementID,
		&ticket.Location.BuildingName,
		&ticket.Location.FloorName,
		&ticket.Location.RoomName,
		&ticket.Location.AreaName,
		&ticket.Location.ElementName,
		&ticket.CreatedBy,
		&ticket.AssigneeID,
		&ticket.ApproverID,
		&ticket.DepartmentID,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	)
}
