package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
)

// LocationRepository reads the location taxonomy. Nodes are seeded and
// administered outside the ticket workflow, so there are no writes here.
type LocationRepository interface {
	GetByID(ctx context.Context, level domain.LocationLevel, id int64) (*domain.LocationNode, error)
	// FindChildByName performs a scoped lookup: the name is searched only
	// among children of parentID. parentID is nil for buildings.
	FindChildByName(ctx context.Context, level domain.LocationLevel, parentID *int64, name string) (*domain.LocationNode, error)
	ListChildren(ctx context.Context, level domain.LocationLevel, parentID *int64) ([]domain.LocationNode, error)
}

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository returns a Postgres-backed implementation.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &locationRepository{pool: pool}
}

func (r *locationRepository) GetByID(ctx context.Context, level domain.LocationLevel, id int64) (*domain.LocationNode, error) {
	const query = `
        SELECT id, level, parent_id, name, created_at, updated_at
        FROM location_nodes WHERE id=$1 AND level=$2`
	return r.fetchSingle(ctx, query, id, level)
}

func (r *locationRepository) FindChildByName(ctx context.Context, level domain.LocationLevel, parentID *int64, name string) (*domain.LocationNode, error) {
	if parentID == nil {
		const query = `
            SELECT id, level, parent_id, name, created_at, updated_at
            FROM location_nodes WHERE level=$1 AND parent_id IS NULL AND name=$2`
		return r.fetchSingle(ctx, query, level, name)
	}
	const query = `
        SELECT id, level, parent_id, name, created_at, updated_at
        FROM location_nodes WHERE level=$1 AND parent_id=$2 AND name=$3`
	return r.fetchSingle(ctx, query, level, *parentID, name)
}

func (r *locationRepository) ListChildren(ctx context.Context, level domain.LocationLevel, parentID *int64) ([]domain.LocationNode, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if parentID == nil {
		const query = `
            SELECT id, level, parent_id, name, created_at, updated_at
            FROM location_nodes WHERE level=$1 AND parent_id IS NULL ORDER BY name`
		rows, err = r.pool.Query(ctx, query, level)
	} else {
		const query = `
            SELECT id, level, parent_id, name, created_at, updated_at
            FROM location_nodes WHERE level=$1 AND parent_id=$2 ORDER BY name`
		rows, err = r.pool.Query(ctx, query, level, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LocationNode
	for rows.Next() {
		var node domain.LocationNode
		if err := rows.Scan(
			&node.ID,
			&node.Level,
			&node.ParentID,
			&node.Name,
			&node.CreatedAt,
			&node.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, node)
	}
	return result, rows.Err()
}

func (r *locationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.LocationNode, error) {
	var node domain.LocationNode
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&node.ID,
		&node.Level,
		&node.ParentID,
		&node.Name,
		&node.CreatedAt,
		&node.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &node, nil
}
