// models/api_models.go
package models

import (
	"fmt"
	"strings"
)

// Allowed values for segment enum fields. These come from the field teams'
// reporting forms; anything else is rejected at the API boundary.
var (
	AllowedActivityTypes = []string{
		"Visita de Mantenimiento",
		"Visita de Inspección",
		"Gestión Social",
		"Emergencia",
	}
	AllowedVehicleTypes = []string{
		"Camioneta con platón",
		"SUV",
		"Automóvil",
		"Bus",
		"Minivan",
	}
)

// EvaluateRequest is the body of POST /api/evaluate: the legacy flat city
// list, evaluated as a single synthetic day.
type EvaluateRequest struct {
	UserID   string      `json:"user_id"`
	Platform string      `json:"platform"`
	Date     string      `json:"date,omitempty"`
	Cities   []CityInput `json:"cities"`
}

// CityInput names one city in an EvaluateRequest. RiskScore sent by clients
// is ignored; only the official catalog score counts.
type CityInput struct {
	Name      string   `json:"name"`
	RiskScore *float64 `json:"risk_score,omitempty"`
}

// EvaluateDayRequest is the body of POST /api/evaluate_day: one user, one
// planned date, all segments of that day.
type EvaluateDayRequest struct {
	Date     string    `json:"date"`
	Platform string    `json:"platform,omitempty"`
	User     UserInfo  `json:"user"`
	Segments []Segment `json:"segments"`
}

// Validate checks the request before it enters the evaluation core.
// Enum fields are matched case-insensitively and rewritten to their
// canonical spelling; plates are upper-cased with spaces removed.
func (r *EvaluateDayRequest) Validate() error {
	if r.Date == "" {
		return fmt.Errorf("missing 'date'")
	}
	if r.User.UserID == "" {
		return fmt.Errorf("missing 'user.user_id'")
	}
	if len(r.Segments) == 0 {
		return fmt.Errorf("'segments' is empty")
	}
	seen := make(map[int]bool, len(r.Segments))
	for i := range r.Segments {
		seg := &r.Segments[i]
		if seg.SegmentIndex < 0 {
			return fmt.Errorf("segment %d: segment_index must be >= 0", i)
		}
		if seen[seg.SegmentIndex] {
			return fmt.Errorf("duplicate segment_index %d", seg.SegmentIndex)
		}
		seen[seg.SegmentIndex] = true
		if strings.TrimSpace(seg.DestMunicipio) == "" {
			return fmt.Errorf("segment %d: missing 'dest_municipio'", seg.SegmentIndex)
		}
		if seg.CompanionsCount < 0 {
			return fmt.Errorf("segment %d: companions_count must be >= 0", seg.SegmentIndex)
		}
		if seg.ActivityType != "" {
			canonical, err := normalizeEnum(seg.ActivityType, AllowedActivityTypes)
			if err != nil {
				return fmt.Errorf("segment %d: %w", seg.SegmentIndex, err)
			}
			seg.ActivityType = canonical
		}
		if seg.VehicleType != "" {
			canonical, err := normalizeEnum(seg.VehicleType, AllowedVehicleTypes)
			if err != nil {
				return fmt.Errorf("segment %d: %w", seg.SegmentIndex, err)
			}
			seg.VehicleType = canonical
		}
		if seg.VehiclePlate != "" {
			plate := strings.ToUpper(strings.ReplaceAll(seg.VehiclePlate, " ", ""))
			if len(plate) > 7 {
				plate = plate[:7]
			}
			seg.VehiclePlate = plate
		}
	}
	return nil
}

func normalizeEnum(value string, allowed []string) (string, error) {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid value %q (allowed: %s)", value, strings.Join(allowed, ", "))
}
