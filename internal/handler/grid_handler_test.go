package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/dto"
	"github.com/magnet-school/marks-console/internal/middleware"
	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
	"github.com/magnet-school/marks-console/pkg/config"
	"github.com/magnet-school/marks-console/pkg/response"
)

type fakeBackend struct {
	page    *models.MarksPage
	updates []models.MarkUpdate
	batches [][]models.MarkUpdate
}

func (b *fakeBackend) Marks(ctx context.Context, token string, query models.MarksQuery) (*models.MarksPage, error) {
	copied := *b.page
	copied.Results = append([]models.MarkRecord(nil), b.page.Results...)
	return &copied, nil
}

func (b *fakeBackend) UpdateMark(ctx context.Context, token string, update models.MarkUpdate) error {
	b.updates = append(b.updates, update)
	for i := range b.page.Results {
		if b.page.Results[i].SlNo == update.SlNo {
			b.page.Results[i].Mark = update.Mark
		}
	}
	return nil
}

func (b *fakeBackend) BulkUpdate(ctx context.Context, token string, updates []models.MarkUpdate) error {
	b.batches = append(b.batches, updates)
	for _, update := range updates {
		for i := range b.page.Results {
			if b.page.Results[i].SlNo == update.SlNo {
				b.page.Results[i].Mark = update.Mark
			}
		}
	}
	return nil
}

// newGridRouter wires the grid routes with a fake backend and a middleware
// that injects the session directly, standing in for JWT validation.
func newGridRouter(t *testing.T, session *models.Session) (*gin.Engine, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{page: &models.MarksPage{
		Count: 2,
		Results: []models.MarkRecord{
			{SlNo: "SL-001", StudentName: "Asha", Mark: 70, MaxMark: 100},
			{SlNo: "SL-002", StudentName: "Binu", Mark: 55, MaxMark: 100},
		},
	}}

	cacheSvc := service.NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	marks := service.NewMarksService(backend, cacheSvc, nil, time.Minute, zap.NewNop())
	grid := service.NewGridService(marks, nil, config.GridConfig{DefaultPageSize: 10, SuccessWindow: 2 * time.Second}, zap.NewNop())

	gridHandler := NewGridHandler(grid)
	editHandler := NewEditHandler(grid)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: session.UserID, SessionID: session.ID})
		c.Set(middleware.ContextSessionKey, session)
	})
	r.GET("/grid", gridHandler.View)
	r.PUT("/grid/filters/:name", gridHandler.SetFilter)
	r.PUT("/grid/page-size", gridHandler.SetPageSize)
	r.POST("/grid/edit/:slno", editHandler.StartEdit)
	r.PUT("/grid/edit/value", editHandler.SetEditValue)
	r.POST("/grid/edit/save", editHandler.SaveEdit)
	r.PUT("/grid/bulk/:slno", editHandler.SetBulkInput)
	r.POST("/grid/bulk/save", editHandler.BulkSave)

	return r, backend
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeGridView(t *testing.T, w *httptest.ResponseRecorder) dto.GridView {
	t.Helper()
	var envelope struct {
		Data dto.GridView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestGridViewEndpoint(t *testing.T) {
	session := &models.Session{ID: "s1", UserID: "u1", UpstreamToken: "tok", EditMode: models.EditModeBulk}
	r, _ := newGridRouter(t, session)

	w := doJSON(r, http.MethodGet, "/grid", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decodeGridView(t, w)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "70.000", view.Rows[0].Display)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 10, view.PageSize)
}

func TestGridSetFilterEndpoint(t *testing.T) {
	session := &models.Session{ID: "s1", UserID: "u1", UpstreamToken: "tok", EditMode: models.EditModeBulk}
	r, _ := newGridRouter(t, session)

	w := doJSON(r, http.MethodPut, "/grid/filters/term", map[string]string{"value": "T1"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeGridView(t, w)
	assert.Equal(t, "T1", view.Filters.Term)

	w = doJSON(r, http.MethodPut, "/grid/filters/teacher", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGridPageSizeEndpointRejectsUnsupported(t *testing.T) {
	session := &models.Session{ID: "s1", UserID: "u1", UpstreamToken: "tok", EditMode: models.EditModeBulk}
	r, _ := newGridRouter(t, session)

	w := doJSON(r, http.MethodPut, "/grid/page-size", map[string]int{"page_size": 25})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
}

func TestSingleEditFlowOverHTTP(t *testing.T) {
	session := &models.Session{ID: "s1", UserID: "u1", UpstreamToken: "tok", EditMode: models.EditModeSingle}
	r, backend := newGridRouter(t, session)

	w := doJSON(r, http.MethodPost, "/grid/edit/SL-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// a second record cannot be opened while the first is being edited
	w = doJSON(r, http.MethodPost, "/grid/edit/SL-002", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPut, "/grid/edit/value", map[string]string{"value": "85"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/grid/edit/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, models.MarkUpdate{SlNo: "SL-001", Mark: 85}, backend.updates[0])
}

func TestBulkEditFlowOverHTTP(t *testing.T) {
	session := &models.Session{ID: "s1", UserID: "u1", UpstreamToken: "tok", EditMode: models.EditModeBulk}
	r, backend := newGridRouter(t, session)

	w := doJSON(r, http.MethodPut, "/grid/bulk/SL-001", map[string]string{"value": "85"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, "/grid/bulk/SL-002", map[string]string{"value": "120"})
	require.Equal(t, http.StatusOK, w.Code)

	// save is blocked while an entry is invalid
	w = doJSON(r, http.MethodPost, "/grid/bulk/save", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, backend.batches)

	w = doJSON(r, http.MethodPut, "/grid/bulk/SL-002", map[string]string{"value": "60"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/grid/bulk/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, backend.batches, 1)
	assert.Len(t, backend.batches[0], 2)
}
