package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/pkg/config"
)

func newTestExportService(backend *stubBackend) *ExportService {
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	marks := NewMarksService(backend, cacheSvc, nil, time.Minute, zap.NewNop())
	return NewExportService(marks, config.ExportConfig{Enabled: true, MaxPages: 5}, zap.NewNop())
}

func TestExportCSV(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count: 2,
		Results: []models.MarkRecord{
			{SlNo: "SL-001", StudentName: "Asha", SubjectName: "Maths", Mark: 85, MaxMark: 100, Grade: "A"},
			{SlNo: "SL-002", StudentName: "Binu", SubjectName: "Maths", Mark: 47.5, MaxMark: 100, Grade: "C"},
		},
	}}
	svc := newTestExportService(backend)

	result, err := svc.Export(context.Background(), "tok", models.FilterState{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	body := string(result.Content)
	assert.Contains(t, body, "Sl No,Admission,Student")
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "85.000")
	assert.Contains(t, body, "47.500")
}

func TestExportPDF(t *testing.T) {
	backend := &stubBackend{page: &models.MarksPage{
		Count:   1,
		Results: []models.MarkRecord{{SlNo: "SL-001", StudentName: "Asha", Mark: 85, MaxMark: 100}},
	}}
	svc := newTestExportService(backend)

	result, err := svc.Export(context.Background(), "tok", models.FilterState{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnknownFormat(t *testing.T) {
	svc := newTestExportService(&stubBackend{page: &models.MarksPage{}})
	_, err := svc.Export(context.Background(), "tok", models.FilterState{}, "xlsx")
	require.Error(t, err)
}

func TestExportDisabled(t *testing.T) {
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	marks := NewMarksService(&stubBackend{page: &models.MarksPage{}}, cacheSvc, nil, time.Minute, zap.NewNop())
	svc := NewExportService(marks, config.ExportConfig{Enabled: false}, zap.NewNop())

	_, err := svc.Export(context.Background(), "tok", models.FilterState{}, ExportFormatCSV)
	require.Error(t, err)
}
