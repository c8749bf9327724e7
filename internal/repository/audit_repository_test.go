package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnet-school/marks-console/internal/models"
)

func newMockAuditRepo(t *testing.T) (*AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditRepository(sqlx.NewDb(db, "postgres")), mock
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestAuditRepositoryInsert(t *testing.T) {
	repo, mock := newMockAuditRepo(t)

	mock.ExpectExec("INSERT INTO mark_audits").
		WithArgs(sqlmock.AnyArg(), "teacher-7", models.AuditActionMarkUpdate, "SL-001", floatPtr(70), floatPtr(85), 1, "10.0.0.5", "console-test").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.MarkAudit{
		UserID:    "teacher-7",
		Action:    models.AuditActionMarkUpdate,
		SlNo:      strPtr("SL-001"),
		OldMark:   floatPtr(70),
		NewMark:   floatPtr(85),
		BatchSize: 1,
		IPAddress: "10.0.0.5",
		UserAgent: "console-test",
	}

	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryInsertBatchTransaction(t *testing.T) {
	repo, mock := newMockAuditRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mark_audits").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO mark_audits").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entries := []*models.MarkAudit{
		{UserID: "teacher-7", Action: models.AuditActionBulkUpdate, SlNo: strPtr("SL-001"), NewMark: floatPtr(80), BatchSize: 2},
		{UserID: "teacher-7", Action: models.AuditActionBulkUpdate, SlNo: strPtr("SL-002"), NewMark: floatPtr(90), BatchSize: 2},
	}

	err := repo.InsertBatch(context.Background(), entries)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryInsertBatchEmpty(t *testing.T) {
	repo, mock := newMockAuditRepo(t)

	err := repo.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryRecentByUser(t *testing.T) {
	repo, mock := newMockAuditRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "slno", "old_mark", "new_mark", "batch_size", "ip_address", "user_agent", "created_at"}).
		AddRow("a1", "teacher-7", models.AuditActionMarkUpdate, "SL-001", 70.0, 85.0, 1, "10.0.0.5", "console-test", now)

	mock.ExpectQuery("SELECT (.+) FROM mark_audits").
		WithArgs("teacher-7", 50).
		WillReturnRows(rows)

	got, err := repo.Recent(context.Background(), "teacher-7", 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "teacher-7", got[0].UserID)
	assert.Equal(t, models.AuditActionMarkUpdate, got[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
