package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
)

type stubFilterBackend struct {
	meta  *models.FilterMetadata
	err   error
	calls int
}

func (b *stubFilterBackend) Filters(ctx context.Context, token string, scope map[string]string) (*models.FilterMetadata, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.meta, nil
}

func newTestFilterService(backend *stubFilterBackend) *FilterService {
	cacheSvc := NewCacheService(newMemCacheRepo(), nil, time.Hour, zap.NewNop(), true)
	return NewFilterService(backend, cacheSvc, nil, time.Hour, zap.NewNop())
}

func TestFilterMetadataCaches(t *testing.T) {
	backend := &stubFilterBackend{meta: &models.FilterMetadata{
		Terms:   []string{"T1", "T2"},
		Classes: []string{"9", "10"},
	}}
	svc := newTestFilterService(backend)

	meta, err := svc.Metadata(context.Background(), "tok", models.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, meta.Terms)
	assert.Equal(t, 1, backend.calls)

	meta, err = svc.Metadata(context.Background(), "tok", models.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, meta.Terms)
	assert.Equal(t, 1, backend.calls)
}

func TestFilterMetadataScopedSeparately(t *testing.T) {
	backend := &stubFilterBackend{meta: &models.FilterMetadata{}}
	svc := newTestFilterService(backend)

	_, err := svc.Metadata(context.Background(), "tok", models.FilterState{})
	require.NoError(t, err)
	_, err = svc.Metadata(context.Background(), "tok", models.FilterState{ClassField: "10", Division: "A"})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)

	_, err = svc.Metadata(context.Background(), "tok", models.FilterState{ClassField: "10", Division: "A"})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestFilterMetadataPropagatesFailure(t *testing.T) {
	backend := &stubFilterBackend{err: assert.AnError}
	svc := newTestFilterService(backend)

	_, err := svc.Metadata(context.Background(), "tok", models.FilterState{})
	require.Error(t, err)
}
