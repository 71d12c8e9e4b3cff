// services/evaluation_service.go
package services

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Gustavo2020/GestUnifServ/catalog"
	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/utils"
)

const evaluatedBy = "gestunifserv"

// EvaluationService evaluates planned travel days against the official risk
// catalog and persists the resulting RouteRecords to both sinks.
type EvaluationService struct {
	Catalog *catalog.RiskCatalog
	Drivers *catalog.DriverCatalog
	Backups BackupStore
	DB      RelationalStore
	Audit   *AuditLogger
	Clock   clockwork.Clock
}

// NewEvaluationService wires an EvaluationService. Drivers and Audit may be
// nil; Clock defaults to the real clock.
func NewEvaluationService(cat *catalog.RiskCatalog, drivers *catalog.DriverCatalog, backups BackupStore, db RelationalStore, audit *AuditLogger, clock clockwork.Clock) *EvaluationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EvaluationService{
		Catalog: cat,
		Drivers: drivers,
		Backups: backups,
		DB:      db,
		Audit:   audit,
		Clock:   clock,
	}
}

// EvaluateSegment scores one segment's destination municipality. An
// unresolvable destination yields a CityResult with Resolved=false and level
// Unknown rather than an error, so one bad city never blocks the rest of
// the day.
func (s *EvaluationService) EvaluateSegment(seg models.Segment) models.CityResult {
	entry, ok := s.Catalog.Lookup(seg.DestMunicipio)
	if !ok {
		log.Printf("WARN Service: unknown municipality %q in segment %d", seg.DestMunicipio, seg.SegmentIndex)
		return models.CityResult{
			Name:      seg.DestMunicipio,
			RiskLevel: models.RiskLevelUnknown,
			Resolved:  false,
		}
	}
	return models.CityResult{
		Name:                      entry.Municipio,
		RiskScore:                 entry.RiskScore,
		RiskLevel:                 models.ClassifyRisk(entry.RiskScore),
		JurisdiccionFuerzaMilitar: entry.JurisdiccionFuerzaMilitar,
		JurisdiccionPolicia:       entry.JurisdiccionPolicia,
		Resolved:                  true,
	}
}

// AggregateDay evaluates every segment of a day and derives the day
// aggregate. Cities preserve segment order (ties broken by segment_index);
// the average is computed over resolved cities only and rounded to two
// decimals. With zero resolved cities the average is nil and the overall
// level is Unknown.
func (s *EvaluationService) AggregateDay(date string, segments []models.Segment) models.DaySummary {
	ordered := make([]models.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SegmentIndex < ordered[j].SegmentIndex
	})

	cities := make([]models.CityResult, 0, len(ordered))
	total := 0.0
	resolved := 0
	for _, seg := range ordered {
		city := s.EvaluateSegment(seg)
		cities = append(cities, city)
		if city.Resolved {
			total += city.RiskScore
			resolved++
		}
	}

	summary := models.RiskSummary{
		TotalRisk:    round2(total),
		OverallLevel: models.RiskLevelUnknown,
	}
	if resolved > 0 {
		avg := round2(total / float64(resolved))
		summary.AverageRisk = &avg
		summary.OverallLevel = models.ClassifyRisk(avg)
	}

	return models.DaySummary{Date: date, Cities: cities, Summary: summary}
}

// EvaluateDay runs the full cycle for an /evaluate_day request: enrich
// drivers, aggregate the day, build the RouteRecord and dual-write it.
// The record is returned even when persistence partially failed so the
// caller can retry the failed sink; the error then is a
// *PartialPersistenceError.
func (s *EvaluationService) EvaluateDay(req models.EvaluateDayRequest, requestID string) (*models.RouteRecord, error) {
	if _, err := utils.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, req.Date)
	}

	segments := s.enrichDrivers(req.Segments)
	day := s.AggregateDay(req.Date, segments)
	if !anyResolved(day.Cities) {
		s.Audit.Append("evaluate_day", req.User.UserID, "rejected", "", requestID)
		return nil, fmt.Errorf("%w: no city of the day could be resolved", ErrUnknownMunicipality)
	}

	platform := req.Platform
	if platform == "" {
		platform = "MS Teams"
	}
	record := s.buildRecord(req.User, platform, day, segments)

	err := s.persist(record)
	result := "ok"
	if err != nil {
		result = "persistence_error"
	}
	s.Audit.Append("evaluate_day", req.User.UserID, result, record.RutaID, requestID)
	return &record, err
}

// EvaluateCities handles the legacy /evaluate body: a flat city list with no
// segment metadata. Each city becomes a synthetic segment so the rest of the
// pipeline is shared.
func (s *EvaluationService) EvaluateCities(req models.EvaluateRequest, requestID string) (*models.RouteRecord, error) {
	if len(req.Cities) == 0 {
		return nil, fmt.Errorf("%w: city list is empty", ErrInvalidQuery)
	}
	date := req.Date
	if date == "" {
		date = s.Clock.Now().Format(utils.DateLayout)
	} else if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, date)
	}

	segments := make([]models.Segment, 0, len(req.Cities))
	for i, city := range req.Cities {
		segments = append(segments, models.Segment{
			SegmentIndex:  i,
			DestMunicipio: city.Name,
		})
	}

	day := s.AggregateDay(date, segments)
	if !anyResolved(day.Cities) {
		s.Audit.Append("evaluate", req.UserID, "rejected", "", requestID)
		return nil, fmt.Errorf("%w: no city of the request could be resolved", ErrUnknownMunicipality)
	}

	record := s.buildRecord(models.UserInfo{UserID: req.UserID}, req.Platform, day, segments)

	err := s.persist(record)
	result := "ok"
	if err != nil {
		result = "persistence_error"
	}
	s.Audit.Append("evaluate", req.UserID, result, record.RutaID, requestID)
	return &record, err
}

// buildRecord assembles the immutable RouteRecord for one evaluated day.
// The ruta_id is a fresh UUID, so concurrent requests cannot collide, and
// it is the join key between the JSON backup and the relational row.
func (s *EvaluationService) buildRecord(user models.UserInfo, platform string, day models.DaySummary, segments []models.Segment) models.RouteRecord {
	record := models.RouteRecord{
		RutaID:      "RUTA-" + uuid.NewString(),
		CreatedAt:   s.Clock.Now(),
		PlannedDate: day.Date,
		User:        user,
		Platform:    platform,
		EvaluatedBy: evaluatedBy,
		Segments:    segments,
		Cities:      day.Cities,
		Summary:     day.Summary,
		Status:      models.StatusPendingValidation,
	}
	HoistJurisdiction(&record)
	return record
}

// HoistJurisdiction copies the jurisdiction fields of the destination city
// of the day's last segment to the top level of the record. Cities are in
// segment order and destination-only, so the last element is that city.
// An empty city list leaves the fields empty.
func HoistJurisdiction(record *models.RouteRecord) {
	if len(record.Cities) == 0 {
		return
	}
	last := record.Cities[len(record.Cities)-1]
	record.JurisdiccionFuerzaMilitar = last.JurisdiccionFuerzaMilitar
	record.JurisdiccionPolicia = last.JurisdiccionPolicia
}

// persist dual-writes the record. Both sinks failing is a plain error; one
// sink failing is a *PartialPersistenceError naming the failed sink so the
// caller can retry just that write. Never silently swallowed.
func (s *EvaluationService) persist(record models.RouteRecord) error {
	backupErr := s.Backups.SaveBackup(record)
	if backupErr != nil {
		log.Printf("ERROR Service: backup write failed for %s: %v", record.RutaID, backupErr)
	}
	dbErr := s.DB.SaveEvaluation(record)
	if dbErr != nil {
		log.Printf("ERROR Service: relational write failed for %s: %v", record.RutaID, dbErr)
	}

	switch {
	case backupErr == nil && dbErr == nil:
		return nil
	case backupErr != nil && dbErr != nil:
		return fmt.Errorf("both sinks failed for %s: backup: %v; relational: %v", record.RutaID, backupErr, dbErr)
	case backupErr != nil:
		return &PartialPersistenceError{RutaID: record.RutaID, FailedSink: SinkBackup, Err: backupErr}
	default:
		return &PartialPersistenceError{RutaID: record.RutaID, FailedSink: SinkRelational, Err: dbErr}
	}
}

// enrichDrivers fills blank driver names and phones from the driver
// registry, keyed by national id. Unknown drivers pass through untouched.
func (s *EvaluationService) enrichDrivers(segments []models.Segment) []models.Segment {
	if s.Drivers == nil {
		return segments
	}
	enriched := make([]models.Segment, len(segments))
	copy(enriched, segments)
	for i := range enriched {
		seg := &enriched[i]
		if seg.DriverNationalID == "" {
			continue
		}
		registered, ok := s.Drivers.Get(seg.DriverNationalID)
		if !ok {
			continue
		}
		if seg.DriverFirstName == "" {
			seg.DriverFirstName = registered.FirstName
		}
		if seg.DriverLastName == "" {
			seg.DriverLastName = registered.LastName
		}
		if seg.DriverPhone == "" {
			seg.DriverPhone = registered.Phone
		}
	}
	return enriched
}

func anyResolved(cities []models.CityResult) bool {
	for _, c := range cities {
		if c.Resolved {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
