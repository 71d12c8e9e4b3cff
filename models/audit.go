// models/audit.go
package models

import "time"

// AuditEntry is one row of the audit trail. Appends are fire-and-forget;
// a failed insert never fails the request it describes.
type AuditEntry struct {
	ID        int64     `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	UserID    string    `db:"user_id" json:"user_id"`
	Result    string    `db:"result" json:"result"`
	RutaID    string    `db:"ruta_id" json:"ruta_id,omitempty"`
	RequestID string    `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
