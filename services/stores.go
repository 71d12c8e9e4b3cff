// services/stores.go
package services

import (
	"time"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// BackupStore is the flat-file sink: one JSON document per RouteRecord,
// keyed by ruta_id.
type BackupStore interface {
	SaveBackup(record models.RouteRecord) error
	GetBackup(rutaID string) (*models.RouteRecord, error)
	ListBackups(start, end time.Time, userID string) ([]models.RouteRecord, error)
}

// RelationalStore is the database sink. Rows carry the record head and its
// city results; segment detail lives only in the backup.
type RelationalStore interface {
	SaveEvaluation(record models.RouteRecord) error
	GetEvaluationsForWindow(start, end time.Time, userID string) ([]models.RouteRecord, error)
}

// AuditStore appends audit trail entries.
type AuditStore interface {
	InsertAuditEntry(entry models.AuditEntry) error
}
