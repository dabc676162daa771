package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// Selector picks one node at a hierarchy level, by ID or by display name.
// When both are present the ID wins.
type Selector struct {
	ID   *int64
	Name string
}

func (s Selector) empty() bool {
	return s.ID == nil && strings.TrimSpace(s.Name) == ""
}

// Input carries the five per-level selectors of a ticket submission.
type Input struct {
	Building Selector
	Floor    Selector
	Room     Selector
	Area     Selector
	Element  Selector
}

func (in Input) selectors() []Selector {
	return []Selector{in.Building, in.Floor, in.Room, in.Area, in.Element}
}

// Resolver turns a location submission into five consistent, validated
// node references. Resolution walks the hierarchy top-down and stops at
// the first level that fails, so a ticket is never created from a
// partially valid chain.
type Resolver struct {
	nodes repository.LocationRepository
}

// NewResolver constructs a resolver over the location store.
func NewResolver(nodes repository.LocationRepository) *Resolver {
	return &Resolver{nodes: nodes}
}

// Resolve validates the chain and returns the five resolved IDs together
// with the display names of the resolved nodes.
//
// All five levels are mandatory; a level with neither ID nor name fails
// validation before any lookup runs. Name lookups are scoped to the parent
// resolved at the level above, so identically named siblings under
// different parents stay distinct. ID lookups must match the expected
// parent chain.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*domain.TicketLocation, error) {
	levels := domain.HierarchyLevels()
	selectors := in.selectors()

	missing := map[string]any{}
	for i, sel := range selectors {
		if sel.empty() {
			field := strings.ToLower(string(levels[i]))
			missing[field] = "id or name required"
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all five location levels are required", missing)
	}

	var parent *domain.LocationNode
	resolved := make([]*domain.LocationNode, 0, len(levels))
	for i, level := range levels {
		node, err := r.resolveLevel(ctx, level, parent, selectors[i])
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, node)
		parent = node
	}

	return &domain.TicketLocation{
		BuildingID:   resolved[0].ID,
		FloorID:      resolved[1].ID,
		RoomID:       resolved[2].ID,
		AreaID:       resolved[3].ID,
		ElementID:    resolved[4].ID,
		BuildingName: resolved[0].Name,
		FloorName:    resolved[1].Name,
		RoomName:     resolved[2].Name,
		AreaName:     resolved[3].Name,
		ElementName:  resolved[4].Name,
	}, nil
}

func (r *Resolver) resolveLevel(ctx context.Context, level domain.LocationLevel, parent *domain.LocationNode, sel Selector) (*domain.LocationNode, error) {
	if sel.ID != nil {
		node, err := r.nodes.GetByID(ctx, level, *sel.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewLocationResolutionError(string(level), *sel.ID)
			}
			return nil, err
		}
		if !parentMatches(node, parent) {
			return nil, apperrors.NewLocationResolutionError(string(level), *sel.ID)
		}
		return node, nil
	}

	name := strings.TrimSpace(sel.Name)
	var parentID *int64
	if parent != nil {
		parentID = &parent.ID
	}
	node, err := r.nodes.FindChildByName(ctx, level, parentID, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewLocationResolutionError(string(level), name)
		}
		return nil, err
	}
	return node, nil
}

// parentMatches checks that a node fetched by ID sits under the node
// resolved at the level above. Buildings must be roots.
func parentMatches(node *domain.LocationNode, parent *domain.LocationNode) bool {
	if parent == nil {
		return node.ParentID == nil
	}
	return node.ParentID != nil && *node.ParentID == parent.ID
}

// CacheKey returns the redis key for a children listing.
func CacheKey(level domain.LocationLevel, parentID *int64) string {
	if parentID == nil {
		return fmt.Sprintf("locations:%s:root", strings.ToLower(string(level)))
	}
	return fmt.Sprintf("locations:%s:%d", strings.ToLower(string(level)), *parentID)
}
