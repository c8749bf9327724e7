package service

import (
	"context"

	"github.com/magnet-school/marks-console/internal/models"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

// AuditReader reads recent audit rows.
type AuditReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.MarkAudit, error)
}

// AuditService exposes the mark audit trail. A nil reader means the audit
// database is disabled.
type AuditService struct {
	reader AuditReader
}

// NewAuditService constructs an audit service.
func NewAuditService(reader AuditReader) *AuditService {
	return &AuditService{reader: reader}
}

// Recent returns the newest audit rows, optionally filtered by user.
func (s *AuditService) Recent(ctx context.Context, userID string, limit int) ([]models.MarkAudit, error) {
	if s == nil || s.reader == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audit trail is disabled")
	}
	rows, err := s.reader.Recent(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit rows")
	}
	if rows == nil {
		rows = []models.MarkAudit{}
	}
	return rows, nil
}
