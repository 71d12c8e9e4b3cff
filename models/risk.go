// models/risk.go
package models

// Risk classification levels. Scores live on a 0.0 .. 1.0 scale and the
// thresholds below classify both single cities and day-level averages, so
// an aggregate level is always comparable with its constituent city levels.
const (
	RiskLevelLow     = "Low"
	RiskLevelMedium  = "Medium"
	RiskLevelHigh    = "High"
	RiskLevelUnknown = "Unknown"
)

const (
	RiskThresholdHigh   = 0.7
	RiskThresholdMedium = 0.4
)

// ClassifyRisk maps a risk score to its level.
func ClassifyRisk(score float64) string {
	if score >= RiskThresholdHigh {
		return RiskLevelHigh
	}
	if score >= RiskThresholdMedium {
		return RiskLevelMedium
	}
	return RiskLevelLow
}

// RiskEntry is one row of the official municipality risk catalog (riesgos.csv).
// CSV tags match the catalog headers exactly.
type RiskEntry struct {
	Departamento              string  `csv:"Departamento" json:"departamento"`
	Municipio                 string  `csv:"Municipio" json:"municipio"`
	Pais                      string  `csv:"Pais" json:"pais"`
	RiskScore                 float64 `csv:"Riesgo" json:"risk_score"`
	RiskLevel                 string  `csv:"Clasificacion" json:"risk_level"`
	JurisdiccionFuerzaMilitar string  `csv:"Jurisdiccion_fuerza_militar" json:"Jurisdiccion_fuerza_militar"`
	JurisdiccionPolicia       string  `csv:"Jurisdiccion_policia" json:"Jurisdiccion_policia"`
}

// CityResult is the evaluated outcome for a single city of a route.
// Resolved is false when the city was not found in the catalog; in that case
// the level is Unknown and the score is zero, and the city is excluded from
// day-level averages.
type CityResult struct {
	Name                      string  `json:"name"`
	RiskScore                 float64 `json:"risk_score"`
	RiskLevel                 string  `json:"risk_level"`
	JurisdiccionFuerzaMilitar string  `json:"Jurisdiccion_fuerza_militar"`
	JurisdiccionPolicia       string  `json:"Jurisdiccion_policia"`
	Resolved                  bool    `json:"resolved"`
}

// Driver is one row of the driver registry (conductores.csv). The registry is
// mutable at runtime, unlike the risk catalog.
type Driver struct {
	NationalID string `csv:"national_id" json:"driver_national_id"`
	FirstName  string `csv:"first_name" json:"driver_first_name"`
	LastName   string `csv:"last_name" json:"driver_last_name"`
	Phone      string `csv:"phone" json:"driver_phone"`
}
