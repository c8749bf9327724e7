package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/pkg/config"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/export"
)

// Export formats the console can render.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{
	"Sl No", "Admission", "Student", "Class", "Division",
	"Subject", "Assessment Item", "Term", "Mark", "Max Mark", "Grade",
}

// ExportResult carries the rendered document and its HTTP metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders the filtered marks listing as a downloadable file.
// It walks the paginated listing page by page up to a configured cap.
type ExportService struct {
	marks  *MarksService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	config config.ExportConfig
	logger *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(marks *MarksService, cfg config.ExportConfig, logger *zap.Logger) *ExportService {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	return &ExportService{
		marks:  marks,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		config: cfg,
		logger: logger,
	}
}

// Export renders every record matching the filters in the given format.
func (s *ExportService) Export(ctx context.Context, token string, filters models.FilterState, format string) (*ExportResult, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "export is disabled")
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	records, err := s.collect(ctx, token, filters)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(records))}
	for _, record := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Sl No":           record.SlNo,
			"Admission":       record.Admission,
			"Student":         record.StudentName,
			"Class":           record.ClassField,
			"Division":        record.Division,
			"Subject":         record.SubjectName,
			"Assessment Item": record.AssessmentItemName,
			"Term":            record.Term,
			"Mark":            FormatMark(record.Mark),
			"Max Mark":        FormatMark(record.MaxMark),
			"Grade":           record.Grade,
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    "marks-" + stamp + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		content, err := s.pdf.Render(dataset, "Marks Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    "marks-" + stamp + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

// collect walks the listing until the last page or the page cap, whichever
// comes first.
func (s *ExportService) collect(ctx context.Context, token string, filters models.FilterState) ([]models.MarkRecord, error) {
	const exportPageSize = 100

	var records []models.MarkRecord
	for page := 1; page <= s.config.MaxPages; page++ {
		query := models.MarksQuery{Filters: filters, Page: page, PageSize: exportPageSize}
		result, _, err := s.marks.Page(ctx, token, query)
		if err != nil {
			return nil, err
		}
		records = append(records, result.Results...)
		if result.Next == nil || len(result.Results) == 0 {
			return records, nil
		}
	}

	if s.logger != nil {
		s.logger.Warn("export truncated at page cap", zap.Int("max_pages", s.config.MaxPages))
	}
	return records, nil
}
