// services/audit.go
package services

import (
	"log"

	"github.com/jonboulle/clockwork"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// AuditLogger appends entries to the audit trail without ever blocking or
// failing the flow that produced them. Inserts run on their own goroutine
// and failures are only logged.
type AuditLogger struct {
	store AuditStore
	clock clockwork.Clock
}

// NewAuditLogger builds an AuditLogger. A nil store disables auditing.
func NewAuditLogger(store AuditStore, clock clockwork.Clock) *AuditLogger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuditLogger{store: store, clock: clock}
}

// Append records an action. Fire-and-forget.
func (a *AuditLogger) Append(action, userID, result, rutaID, requestID string) {
	if a == nil || a.store == nil {
		return
	}
	entry := models.AuditEntry{
		Action:    action,
		UserID:    userID,
		Result:    result,
		RutaID:    rutaID,
		RequestID: requestID,
		CreatedAt: a.clock.Now(),
	}
	go func() {
		if err := a.store.InsertAuditEntry(entry); err != nil {
			log.Printf("WARN Audit: failed to append entry (action=%s user=%s ruta=%s): %v", action, userID, rutaID, err)
		}
	}()
}
