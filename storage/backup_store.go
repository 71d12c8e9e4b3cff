// storage/backup_store.go
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/utils"
)

// BackupStore persists one JSON document per RouteRecord under basePath,
// named output_<ruta_id>.json. The file is the audit backup of the record
// and the source of segment detail the relational rows do not carry.
type BackupStore struct {
	basePath string
}

// New creates the backup directory if needed and returns the store.
func New(basePath string) (*BackupStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", basePath, err)
	}
	return &BackupStore{basePath: basePath}, nil
}

// SaveBackup writes the record's JSON document, overwriting any previous
// file for the same ruta_id (idempotent by key).
func (s *BackupStore) SaveBackup(record models.RouteRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup for %s: %w", record.RutaID, err)
	}
	path := s.fileName(record.RutaID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", path, err)
	}
	return nil
}

// GetBackup loads the record for a ruta_id. A missing file returns
// (nil, nil), not an error.
func (s *BackupStore) GetBackup(rutaID string) (*models.RouteRecord, error) {
	data, err := os.ReadFile(s.fileName(rutaID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup for %s: %w", rutaID, err)
	}
	var record models.RouteRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup for %s: %w", rutaID, err)
	}
	return &record, nil
}

// ListBackups returns all records whose planned date falls inside the
// inclusive [start, end] window, optionally filtered by user id. Files are
// visited in name order so the load order (and with it tie-breaking during
// deduplication) is deterministic. Unreadable or undated files are skipped
// with a warning rather than failing the enumeration.
func (s *BackupStore) ListBackups(start, end time.Time, userID string) ([]models.RouteRecord, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate backups in %s: %w", s.basePath, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "output_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var records []models.RouteRecord
	for _, name := range names {
		path := filepath.Join(s.basePath, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("WARN Storage: failed to read backup %s: %v", path, err)
			continue
		}
		var record models.RouteRecord
		if err := json.Unmarshal(data, &record); err != nil {
			log.Printf("WARN Storage: failed to unmarshal backup %s: %v", path, err)
			continue
		}
		date, err := utils.ParseDate(record.PlannedDate)
		if err != nil {
			log.Printf("WARN Storage: backup %s has unparseable date %q, skipping", path, record.PlannedDate)
			continue
		}
		if !utils.InWindow(date, start, end) {
			continue
		}
		if userID != "" && record.User.UserID != userID {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// fileName maps a ruta_id to its backup path, replacing characters that are
// not valid in file names.
func (s *BackupStore) fileName(rutaID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(rutaID)
	return filepath.Join(s.basePath, "output_"+safe+".json")
}
