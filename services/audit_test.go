package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo2020/GestUnifServ/models"
)

type channelAuditStore struct {
	entries chan models.AuditEntry
}

func (c *channelAuditStore) InsertAuditEntry(entry models.AuditEntry) error {
	c.entries <- entry
	return nil
}

func TestAuditLoggerAppend(t *testing.T) {
	store := &channelAuditStore{entries: make(chan models.AuditEntry, 1)}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 22, 10, 0, 0, 0, time.UTC))
	audit := NewAuditLogger(store, clock)

	audit.Append("evaluate_day", "user_123", "ok", "RUTA-abc", "req-1")

	select {
	case entry := <-store.entries:
		assert.Equal(t, "evaluate_day", entry.Action)
		assert.Equal(t, "user_123", entry.UserID)
		assert.Equal(t, "ok", entry.Result)
		assert.Equal(t, "RUTA-abc", entry.RutaID)
		assert.Equal(t, "req-1", entry.RequestID)
		assert.Equal(t, clock.Now(), entry.CreatedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry never reached the store")
	}
}

func TestAuditLoggerNilSafe(t *testing.T) {
	var audit *AuditLogger
	require.NotPanics(t, func() {
		audit.Append("evaluate", "u", "ok", "", "")
	})
	require.NotPanics(t, func() {
		NewAuditLogger(nil, nil).Append("evaluate", "u", "ok", "", "")
	})
}
