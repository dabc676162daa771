package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/location"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// LocationService feeds the cascading dropdowns. Children listings are
// cached read-through in Redis; the cache is non-authoritative and an
// unreachable Redis degrades silently to the store.
type LocationService struct {
	nodes    repository.LocationRepository
	resolver *location.Resolver
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewLocationService constructs the service. cache may be nil.
func NewLocationService(nodes repository.LocationRepository, resolver *location.Resolver, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *LocationService {
	return &LocationService{
		nodes:    nodes,
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolver exposes the hierarchy resolver for the ticket workflow.
func (s *LocationService) Resolver() *location.Resolver {
	return s.resolver
}

// Children lists nodes at the given level under parentID. parentID must be
// nil exactly when level is BUILDING.
func (s *LocationService) Children(ctx context.Context, level domain.LocationLevel, parentID *int64) ([]domain.LocationNode, error) {
	if !domain.ValidLocationLevel(level) {
		return nil, apperrors.NewValidationError("invalid location level", map[string]any{"level": level})
	}
	if (level == domain.LevelBuilding) != (parentID == nil) {
		return nil, apperrors.NewValidationError("parent_id required for all levels below building", map[string]any{"level": level})
	}

	key := location.CacheKey(level, parentID)
	if nodes, ok := s.cacheGet(ctx, key); ok {
		return nodes, nil
	}

	nodes, err := s.nodes.ListChildren(ctx, level, parentID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, nodes)
	return nodes, nil
}

func (s *LocationService) cacheGet(ctx context.Context, key string) ([]domain.LocationNode, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("location cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var nodes []domain.LocationNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, false
	}
	return nodes, true
}

func (s *LocationService) cacheSet(ctx context.Context, key string, nodes []domain.LocationNode) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("location cache write failed", zap.String("key", key), zap.Error(err))
	}
}
