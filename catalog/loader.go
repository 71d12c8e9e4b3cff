// catalog/loader.go
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"github.com/jszwec/csvutil"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// ParseRiskCsv decodes the official municipality risk catalog (riesgos.csv).
// Rows with a blank municipality or a score outside [0.0, 1.0] are skipped
// with a warning rather than failing the whole load; a catalog with zero
// valid rows is an error. Blank classifications are derived from the score.
func ParseRiskCsv(reader io.Reader) ([]models.RiskEntry, error) {
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for risk catalog: %w", err)
	}

	var entries []models.RiskEntry
	line := 1 // header
	for {
		line++
		var e models.RiskEntry
		if err := decoder.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			log.Printf("WARN Catalog: skipping malformed risk row at line %d: %v", line, err)
			continue
		}
		if e.Municipio == "" {
			log.Printf("WARN Catalog: skipping risk row at line %d: empty municipio", line)
			continue
		}
		if e.RiskScore < 0.0 || e.RiskScore > 1.0 {
			log.Printf("WARN Catalog: skipping risk row for %q at line %d: score %.2f out of range", e.Municipio, line, e.RiskScore)
			continue
		}
		if e.RiskLevel == "" {
			e.RiskLevel = models.ClassifyRisk(e.RiskScore)
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid entries in risk catalog CSV")
	}
	log.Printf("Successfully parsed %d risk catalog entries from CSV.\n", len(entries))
	return entries, nil
}

// ParseDriversCsv decodes the driver registry (conductores.csv). Rows
// without a national id are skipped.
func ParseDriversCsv(reader io.Reader) ([]models.Driver, error) {
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for drivers: %w", err)
	}

	var drivers []models.Driver
	if err := decoder.Decode(&drivers); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode drivers CSV data: %w", err)
	}

	valid := drivers[:0]
	for _, d := range drivers {
		if d.NationalID == "" {
			log.Println("WARN Catalog: skipping driver row with empty national_id")
			continue
		}
		valid = append(valid, d)
	}
	log.Printf("Successfully parsed %d drivers from CSV.\n", len(valid))
	return valid, nil
}

// MarshalDriversCsv encodes the registry back to CSV for persistence.
func MarshalDriversCsv(drivers []models.Driver) ([]byte, error) {
	data, err := csvutil.Marshal(drivers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal drivers to CSV: %w", err)
	}
	return data, nil
}
