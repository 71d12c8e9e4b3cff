// database/evaluation_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// SaveEvaluation writes a RouteRecord's relational row plus its city rows.
// The write is idempotent per ruta_id: the head row is upserted and the city
// rows are cleared and reloaded, so a retry after a partial failure always
// converges on the same state.
func SaveEvaluation(record models.RouteRecord) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for evaluation %s: %w", record.RutaID, err)
	}
	defer tx.Rollback()

	var avg sql.NullFloat64
	if record.Summary.AverageRisk != nil {
		avg = sql.NullFloat64{Float64: *record.Summary.AverageRisk, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO evaluations (
			ruta_id, created_at, planned_date, user_id, platform, evaluated_by,
			overall_level, total_risk, average_risk,
			jurisdiccion_fuerza_militar, jurisdiccion_policia, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			created_at = VALUES(created_at),
			planned_date = VALUES(planned_date),
			user_id = VALUES(user_id),
			platform = VALUES(platform),
			evaluated_by = VALUES(evaluated_by),
			overall_level = VALUES(overall_level),
			total_risk = VALUES(total_risk),
			average_risk = VALUES(average_risk),
			jurisdiccion_fuerza_militar = VALUES(jurisdiccion_fuerza_militar),
			jurisdiccion_policia = VALUES(jurisdiccion_policia),
			status = VALUES(status)
	`,
		record.RutaID, record.CreatedAt, record.PlannedDate, record.User.UserID,
		record.Platform, record.EvaluatedBy, record.Summary.OverallLevel,
		record.Summary.TotalRisk, avg,
		record.JurisdiccionFuerzaMilitar, record.JurisdiccionPolicia, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert evaluation %s: %w", record.RutaID, err)
	}

	_, err = tx.Exec("DELETE FROM city_results WHERE ruta_id = ?", record.RutaID)
	if err != nil {
		return fmt.Errorf("failed to clear city results for %s: %w", record.RutaID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO city_results (
			ruta_id, position, name, risk_score, risk_level,
			jurisdiccion_fuerza_militar, jurisdiccion_policia, resolved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare city result insert: %w", err)
	}
	defer stmt.Close()

	for i, city := range record.Cities {
		_, err := stmt.Exec(
			record.RutaID, i, city.Name, city.RiskScore, city.RiskLevel,
			city.JurisdiccionFuerzaMilitar, city.JurisdiccionPolicia, city.Resolved,
		)
		if err != nil {
			return fmt.Errorf("failed to insert city result %q for %s: %w", city.Name, record.RutaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit evaluation %s: %w", record.RutaID, err)
	}

	log.Printf("Database: saved evaluation %s (%d cities).\n", record.RutaID, len(record.Cities))
	return nil
}

// GetEvaluationsForWindow returns the evaluations whose planned date falls
// inside the inclusive [start, end] window, optionally filtered by user id,
// with their city rows attached. Segment detail is not stored relationally;
// callers recover it from the flat-file backup when they need it.
func GetEvaluationsForWindow(start, end time.Time, userID string) ([]models.RouteRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	query := `
		SELECT ruta_id, created_at, planned_date, user_id, platform, evaluated_by,
		       overall_level, total_risk, average_risk,
		       jurisdiccion_fuerza_militar, jurisdiccion_policia, status
		FROM evaluations
		WHERE planned_date >= ? AND planned_date <= ?
	`
	args := []interface{}{start.Format("2006-01-02"), end.Format("2006-01-02")}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY planned_date, created_at, ruta_id"

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations for window %s - %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var records []models.RouteRecord
	for rows.Next() {
		var r models.RouteRecord
		var plannedDate time.Time
		var avg sql.NullFloat64
		err := rows.Scan(
			&r.RutaID, &r.CreatedAt, &plannedDate, &r.User.UserID, &r.Platform, &r.EvaluatedBy,
			&r.Summary.OverallLevel, &r.Summary.TotalRisk, &avg,
			&r.JurisdiccionFuerzaMilitar, &r.JurisdiccionPolicia, &r.Status,
		)
		if err != nil {
			log.Printf("ERROR Database: failed to scan evaluation row: %v", err)
			continue
		}
		r.PlannedDate = plannedDate.Format("2006-01-02")
		if avg.Valid {
			r.Summary.AverageRisk = &avg.Float64
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation rows: %w", err)
	}

	for i := range records {
		cities, err := getCityResults(records[i].RutaID)
		if err != nil {
			log.Printf("ERROR Database: failed to load city results for %s: %v", records[i].RutaID, err)
			continue
		}
		records[i].Cities = cities
	}

	log.Printf("Database: retrieved %d evaluations for window %s - %s.\n",
		len(records), start.Format("2006-01-02"), end.Format("2006-01-02"))
	return records, nil
}

func getCityResults(rutaID string) ([]models.CityResult, error) {
	rows, err := DB.Query(`
		SELECT name, risk_score, risk_level,
		       jurisdiccion_fuerza_militar, jurisdiccion_policia, resolved
		FROM city_results
		WHERE ruta_id = ?
		ORDER BY position
	`, rutaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []models.CityResult
	for rows.Next() {
		var c models.CityResult
		if err := rows.Scan(&c.Name, &c.RiskScore, &c.RiskLevel,
			&c.JurisdiccionFuerzaMilitar, &c.JurisdiccionPolicia, &c.Resolved); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Store adapts the package-level persistence functions to the interfaces
// the services take, so tests can swap in fakes.
type Store struct{}

func (Store) SaveEvaluation(record models.RouteRecord) error {
	return SaveEvaluation(record)
}

func (Store) GetEvaluationsForWindow(start, end time.Time, userID string) ([]models.RouteRecord, error) {
	return GetEvaluationsForWindow(start, end, userID)
}

func (Store) InsertAuditEntry(entry models.AuditEntry) error {
	return InsertAuditEntry(entry)
}
