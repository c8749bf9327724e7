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

func newCachedMarksService(backend *stubBackend) *MarksService {
	cacheSvc := NewCacheService(newMemCacheRepo(), nil, 5*time.Minute, zap.NewNop(), true)
	return NewMarksService(backend, cacheSvc, nil, 5*time.Minute, zap.NewNop())
}

func TestMarksServicePageCaches(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count:   1,
		Results: []models.MarkRecord{testRecord("SL-001", 70, 100)},
	}}
	svc := newCachedMarksService(backend)
	query := models.MarksQuery{Page: 1, PageSize: 10}

	page, fromCache, err := svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 1, backend.marksCalls)

	page, fromCache, err = svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 1, backend.marksCalls)
}

func TestMarksServiceDistinctQueriesDistinctEntries(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count:   1,
		Results: []models.MarkRecord{testRecord("SL-001", 70, 100)},
	}}
	svc := newCachedMarksService(backend)

	_, _, err := svc.Page(context.Background(), "tok", models.MarksQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	_, _, err = svc.Page(context.Background(), "tok", models.MarksQuery{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.marksCalls)

	filtered := models.MarksQuery{Filters: models.FilterState{Term: "T1"}, Page: 1, PageSize: 10}
	_, _, err = svc.Page(context.Background(), "tok", filtered)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.marksCalls)
}

func TestMarksServiceUpdateInvalidatesCache(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count:   1,
		Results: []models.MarkRecord{testRecord("SL-001", 70, 100)},
	}}
	svc := newCachedMarksService(backend)
	query := models.MarksQuery{Page: 1, PageSize: 10}

	_, _, err := svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)

	require.NoError(t, svc.Update(context.Background(), "tok", models.MarkUpdate{SlNo: "SL-001", Mark: 85}))

	page, fromCache, err := svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 85.0, page.Record("SL-001").Mark)
	assert.Equal(t, 2, backend.marksCalls)
}

func TestMarksServiceBulkUpdateInvalidatesEvenOnFailure(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count:   1,
		Results: []models.MarkRecord{testRecord("SL-001", 70, 100)},
	}}
	svc := newCachedMarksService(backend)
	query := models.MarksQuery{Page: 1, PageSize: 10}

	_, _, err := svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)

	backend.bulkErr = assert.AnError
	err = svc.BulkUpdate(context.Background(), "tok", []models.MarkUpdate{{SlNo: "SL-001", Mark: 85}})
	require.Error(t, err)

	// the backend may have applied part of the batch, so cached pages are gone
	_, fromCache, err := svc.Page(context.Background(), "tok", query)
	require.NoError(t, err)
	assert.False(t, fromCache)
}
