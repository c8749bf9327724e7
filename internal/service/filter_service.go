package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/repository"
)

// FilterBackend is the subset of the school backend client the filter flow
// depends on.
type FilterBackend interface {
	Filters(ctx context.Context, token string, scope map[string]string) (*models.FilterMetadata, error)
}

// FilterService serves the selectable filter dimensions. Metadata changes
// rarely, so it is cached far longer than mark pages.
type FilterService struct {
	upstream FilterBackend
	cache    *CacheService
	metrics  *MetricsService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewFilterService constructs a filter service.
func NewFilterService(client FilterBackend, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *FilterService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FilterService{upstream: client, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

func filtersKey(scope models.FilterState) string {
	params := scope.Params()
	if len(params) == 0 {
		return repository.FiltersKeyPrefix + "all"
	}
	return repository.FiltersKeyPrefix + models.EncodeParams(params)
}

// Metadata returns the filter dimensions, optionally narrowed by the current
// selections so dependent dropdowns only list compatible options.
func (s *FilterService) Metadata(ctx context.Context, token string, scope models.FilterState) (*models.FilterMetadata, error) {
	key := filtersKey(scope)

	var cached models.FilterMetadata
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	start := time.Now()
	meta, err := s.upstream.Filters(ctx, token, scope.Params())
	if s.metrics != nil {
		s.metrics.ObserveUpstream("filters", time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, meta, s.ttl); err != nil && s.logger != nil {
		s.logger.Warn("failed to cache filter metadata", zap.Error(err))
	}
	return meta, nil
}
