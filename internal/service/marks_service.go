package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/repository"
)

// MarksBackend is the subset of the school backend client the marks flow
// depends on.
type MarksBackend interface {
	Marks(ctx context.Context, token string, query models.MarksQuery) (*models.MarksPage, error)
	UpdateMark(ctx context.Context, token string, update models.MarkUpdate) error
	BulkUpdate(ctx context.Context, token string, updates []models.MarkUpdate) error
}

// MarksService fetches mark pages through the cache and funnels every
// mutation through a single invalidation point.
type MarksService struct {
	backend MarksBackend
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewMarksService constructs a marks service.
func NewMarksService(backend MarksBackend, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *MarksService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MarksService{backend: backend, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Page returns one page of marks. The second return value reports whether the
// page was served from cache.
func (s *MarksService) Page(ctx context.Context, token string, query models.MarksQuery) (*models.MarksPage, bool, error) {
	key := query.Key()

	var cached models.MarksPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	page, err := s.backend.Marks(ctx, token, query)
	if s.metrics != nil {
		s.metrics.ObserveUpstream("marks", time.Since(start), err)
	}
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, page, s.ttl); err != nil && s.logger != nil {
		s.logger.Warn("failed to cache marks page", zap.String("key", key), zap.Error(err))
	}
	return page, false, nil
}

// Update commits a single mark and drops every cached page, whatever filters
// produced it. The next fetch observes the backend's truth, including any
// recomputed grade.
func (s *MarksService) Update(ctx context.Context, token string, update models.MarkUpdate) error {
	start := time.Now()
	err := s.backend.UpdateMark(ctx, token, update)
	if s.metrics != nil {
		s.metrics.ObserveUpstream("update_mark", time.Since(start), err)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// BulkUpdate commits a batch of marks in one request. The batch is treated as
// all-or-nothing; cached pages are dropped even on failure because the
// backend may have applied part of it.
func (s *MarksService) BulkUpdate(ctx context.Context, token string, updates []models.MarkUpdate) error {
	start := time.Now()
	err := s.backend.BulkUpdate(ctx, token, updates)
	if s.metrics != nil {
		s.metrics.ObserveUpstream("bulk_update", time.Since(start), err)
	}
	s.invalidate(ctx)
	return err
}

func (s *MarksService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, repository.MarksKeyPattern); err != nil && s.logger != nil {
		s.logger.Warn("failed to invalidate marks cache", zap.Error(err))
	}
}
