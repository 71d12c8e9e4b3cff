// models/route.go
package models

import "time"

// UserInfo identifies the employee a route evaluation belongs to.
type UserInfo struct {
	UserID         string `json:"user_id"`
	UserNationalID string `json:"user_national_id,omitempty"`
	UserFirstName  string `json:"user_first_name,omitempty"`
	UserLastName   string `json:"user_last_name,omitempty"`
	UserPhone      string `json:"user_phone,omitempty"`
	Filial         string `json:"filial,omitempty"`
}

// Companion is one person travelling alongside the employee on a segment.
type Companion struct {
	IDNumber  string `json:"id_number"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Segment is one leg (origin -> destination) of a planned travel day.
// Only the destination municipality is scored; the origin is carried for
// reporting.
type Segment struct {
	SegmentIndex       int         `json:"segment_index"`
	OriginDepartamento string      `json:"origin_departamento,omitempty"`
	OriginMunicipio    string      `json:"origin_municipio"`
	DestTipo           string      `json:"dest_tipo,omitempty"`
	DestID             string      `json:"dest_id,omitempty"`
	DestDepartamento   string      `json:"dest_departamento,omitempty"`
	DestMunicipio      string      `json:"dest_municipio"`
	CompanionsCount    int         `json:"companions_count"`
	Companions         []Companion `json:"companions_json,omitempty"`
	ActivityType       string      `json:"activity_type,omitempty"`
	VehicleType        string      `json:"vehicle_type,omitempty"`
	VehiclePlate       string      `json:"vehicle_plate,omitempty"`
	DriverNationalID   string      `json:"driver_national_id,omitempty"`
	DriverFirstName    string      `json:"driver_first_name,omitempty"`
	DriverLastName     string      `json:"driver_last_name,omitempty"`
	DriverPhone        string      `json:"driver_phone,omitempty"`
	Notes              string      `json:"notes,omitempty"`
}

// RiskSummary holds the aggregate figures of one evaluated day.
// AverageRisk is nil when no city of the day could be resolved against the
// catalog; OverallLevel is Unknown in that case.
type RiskSummary struct {
	TotalRisk    float64  `json:"total_risk"`
	AverageRisk  *float64 `json:"average_risk"`
	OverallLevel string   `json:"overall_level"`
}

// DaySummary combines the evaluated cities of one planned day with their
// aggregate. Cities preserve segment order.
type DaySummary struct {
	Date    string       `json:"date"`
	Cities  []CityResult `json:"cities"`
	Summary RiskSummary  `json:"summary"`
}

// RouteRecord is the persistable result of one evaluation request. It is
// written once to both sinks (JSON backup and relational row, joined by
// RutaID) and never mutated afterwards; corrections create a new record.
//
// The top-level jurisdiction fields are hoisted from the destination city of
// the day's last segment so consumers that only read the top level still see
// jurisdiction without walking Cities.
type RouteRecord struct {
	RutaID                    string       `json:"ruta_id"`
	CreatedAt                 time.Time    `json:"timestamp"`
	PlannedDate               string       `json:"date"`
	User                      UserInfo     `json:"user"`
	Platform                  string       `json:"platform"`
	EvaluatedBy               string       `json:"evaluated_by"`
	Segments                  []Segment    `json:"segments"`
	Cities                    []CityResult `json:"cities"`
	Summary                   RiskSummary  `json:"summary"`
	JurisdiccionFuerzaMilitar string       `json:"Jurisdiccion_fuerza_militar,omitempty"`
	JurisdiccionPolicia       string       `json:"Jurisdiccion_policia,omitempty"`
	Status                    string       `json:"status"`
}

// StatusPendingValidation is the initial status of every new RouteRecord.
const StatusPendingValidation = "PendingValidation"
