// database/audit_store.go
package database

import (
	"fmt"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// InsertAuditEntry appends one row to the audit trail.
func InsertAuditEntry(entry models.AuditEntry) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO audit_log (action, user_id, result, ruta_id, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Action, entry.UserID, entry.Result, entry.RutaID, entry.RequestID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry for action %s: %w", entry.Action, err)
	}
	return nil
}
