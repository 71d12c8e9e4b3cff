// database/schema.go
package database

import (
	"fmt"
	"log"
)

// EnsureSchema creates the tables this service needs if they do not exist.
// Safe to call on every startup.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			ruta_id VARCHAR(64) NOT NULL PRIMARY KEY,
			created_at DATETIME NOT NULL,
			planned_date DATE NOT NULL,
			user_id VARCHAR(128) NOT NULL,
			platform VARCHAR(64) NOT NULL DEFAULT '',
			evaluated_by VARCHAR(64) NOT NULL DEFAULT '',
			overall_level VARCHAR(16) NOT NULL,
			total_risk DOUBLE NOT NULL DEFAULT 0,
			average_risk DOUBLE NULL,
			jurisdiccion_fuerza_militar VARCHAR(128) NOT NULL DEFAULT '',
			jurisdiccion_policia VARCHAR(128) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'PendingValidation',
			INDEX idx_evaluations_date_user (planned_date, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS city_results (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			ruta_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			name VARCHAR(128) NOT NULL,
			risk_score DOUBLE NOT NULL DEFAULT 0,
			risk_level VARCHAR(16) NOT NULL,
			jurisdiccion_fuerza_militar VARCHAR(128) NOT NULL DEFAULT '',
			jurisdiccion_policia VARCHAR(128) NOT NULL DEFAULT '',
			resolved TINYINT(1) NOT NULL DEFAULT 1,
			INDEX idx_city_results_ruta (ruta_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			action VARCHAR(64) NOT NULL,
			user_id VARCHAR(128) NOT NULL DEFAULT '',
			result VARCHAR(32) NOT NULL DEFAULT '',
			ruta_id VARCHAR(64) NOT NULL DEFAULT '',
			request_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	log.Println("Database: schema ensured.")
	return nil
}
