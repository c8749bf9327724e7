package models

import "time"

// Audit actions recorded by the console.
const (
	AuditActionLogin      = "LOGIN"
	AuditActionLogout     = "LOGOUT"
	AuditActionMarkUpdate = "MARK_UPDATE"
	AuditActionBulkUpdate = "MARK_BULK_UPDATE"
)

// MarkAudit is one audit-trail row: who changed which mark, from what to
// what. Bulk commits record one row per record plus the batch size.
type MarkAudit struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	SlNo      *string   `db:"slno" json:"slno,omitempty"`
	OldMark   *float64  `db:"old_mark" json:"old_mark,omitempty"`
	NewMark   *float64  `db:"new_mark" json:"new_mark,omitempty"`
	BatchSize int       `db:"batch_size" json:"batch_size"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
