package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
)

// AttachmentRepository persists attachments with their content.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	// ListByTicket returns metadata only; content is fetched per attachment.
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
	DeleteByTicket(ctx context.Context, ticketID int64) error
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, file_name, mime_type, size_bytes, content, uploader_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
		attachment.Content,
		attachment.UploaderID,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, file_name, mime_type, size_bytes, content, uploader_id, created_at
        FROM attachments WHERE id=$1`
	var attachment domain.Attachment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.FileName,
		&attachment.MimeType,
		&attachment.SizeBytes,
		&attachment.Content,
		&attachment.UploaderID,
		&attachment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, file_name, mime_type, size_bytes, uploader_id, created_at
        FROM attachments WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.UploaderID,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) DeleteByTicket(ctx context.Context, ticketID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE ticket_id=$1`, ticketID)
	return err
}
