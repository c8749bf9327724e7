package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/magnet-school/marks-console/internal/models"
)

// AuditRepository writes and reads the mark audit trail in Postgres.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert records one audit row. The identifier and timestamp are assigned
// here so callers only describe the action.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.MarkAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO mark_audits (id, user_id, action, slno, old_mark, new_mark, batch_size, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :action, :slno, :old_mark, :new_mark, :batch_size, :ip_address, :user_agent, NOW())`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}

// InsertBatch records several audit rows in one transaction, used by bulk
// commits so the trail is all-or-nothing like the mutation it describes.
func (r *AuditRepository) InsertBatch(ctx context.Context, entries []*models.MarkAudit) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO mark_audits (id, user_id, action, slno, old_mark, new_mark, batch_size, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :action, :slno, :old_mark, :new_mark, :batch_size, :ip_address, :user_agent, NOW())`

	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("insert audit row for %s: %w", entry.Action, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit transaction: %w", err)
	}
	return nil
}

// Recent returns the newest audit rows, optionally filtered by user.
func (r *AuditRepository) Recent(ctx context.Context, userID string, limit int) ([]models.MarkAudit, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []models.MarkAudit
	var err error
	if userID != "" {
		query := `
			SELECT id, user_id, action, slno, old_mark, new_mark, batch_size, ip_address, user_agent, created_at
			FROM mark_audits
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2`
		err = r.db.SelectContext(ctx, &rows, query, userID, limit)
	} else {
		query := `
			SELECT id, user_id, action, slno, old_mark, new_mark, batch_size, ip_address, user_agent, created_at
			FROM mark_audits
			ORDER BY created_at DESC
			LIMIT $1`
		err = r.db.SelectContext(ctx, &rows, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select audit rows: %w", err)
	}
	return rows, nil
}
