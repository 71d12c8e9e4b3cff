// services/summary_service.go
package services

import (
	"fmt"
	"log"
	"sort"

	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/utils"
)

// SummaryService reconciles route records from the two persistence backends
// into one consistent weekly view. It is purely derive-on-read: nothing it
// produces is persisted, and identical inputs over unchanged backing data
// yield an identical WeeklyView.
type SummaryService struct {
	Backups BackupStore
	DB      RelationalStore
	Audit   *AuditLogger
}

// NewSummaryService wires a SummaryService.
func NewSummaryService(backups BackupStore, db RelationalStore, audit *AuditLogger) *SummaryService {
	return &SummaryService{Backups: backups, DB: db, Audit: audit}
}

// SummarizeWeek builds the WeeklyView for the 7-day window starting at
// weekStart (YYYY-MM-DD). source selects the backend: "json" reads the
// flat-file backups only; "db" reads relational rows and enriches each with
// its matching backup (by ruta_id) to recover segment and city detail the
// rows do not store. userID optionally filters to one employee.
//
// A week with no data returns a well-formed empty view, not an error.
func (s *SummaryService) SummarizeWeek(weekStart, userID, source string) (*models.WeeklyView, error) {
	start, err := utils.ParseDate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid week_start %q", ErrInvalidQuery, weekStart)
	}
	if source != models.SourceJSON && source != models.SourceDB {
		return nil, fmt.Errorf("%w: invalid source %q (use %q or %q)", ErrInvalidQuery, source, models.SourceJSON, models.SourceDB)
	}
	windowStart, windowEnd := utils.WeekWindow(start)

	var candidates []models.RouteRecord
	switch source {
	case models.SourceJSON:
		candidates, err = s.Backups.ListBackups(windowStart, windowEnd, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate backups for week %s: %w", weekStart, err)
		}
	case models.SourceDB:
		candidates, err = s.DB.GetEvaluationsForWindow(windowStart, windowEnd, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to query evaluations for week %s: %w", weekStart, err)
		}
		candidates = s.enrichFromBackups(candidates)
	}

	records := dedupeByRutaID(candidates)
	for i := range records {
		rederiveJurisdiction(&records[i])
	}

	view := bucketByDay(records, weekStart, source)
	s.Audit.Append("week_summary", userID, "ok", "", "")
	log.Printf("Service: weekly summary %s source=%s user=%q -> %d records over %d days\n",
		weekStart, source, userID, view.RecordCount, len(view.Days))
	return view, nil
}

// enrichFromBackups completes relational rows with the detail only the
// flat-file backup holds: segments always, cities and user identity when
// the row lacks them. Rows without a backup pass through as-is.
func (s *SummaryService) enrichFromBackups(rows []models.RouteRecord) []models.RouteRecord {
	enriched := make([]models.RouteRecord, len(rows))
	copy(enriched, rows)
	for i := range enriched {
		row := &enriched[i]
		backup, err := s.Backups.GetBackup(row.RutaID)
		if err != nil {
			log.Printf("WARN Service: failed to read backup for %s, using relational row only: %v", row.RutaID, err)
			continue
		}
		if backup == nil {
			continue
		}
		row.Segments = backup.Segments
		if len(row.Cities) == 0 {
			row.Cities = backup.Cities
		}
		if row.User.UserNationalID == "" && backup.User.UserID == row.User.UserID {
			row.User = backup.User
		}
		if row.PlannedDate == "" {
			row.PlannedDate = backup.PlannedDate
		}
	}
	return enriched
}

// dedupeByRutaID keeps one record per ruta_id. The most recently created
// wins; on equal creation timestamps the later-loaded record wins, which
// keeps the result deterministic for a fixed load order.
func dedupeByRutaID(candidates []models.RouteRecord) []models.RouteRecord {
	byID := make(map[string]models.RouteRecord, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		existing, seen := byID[cand.RutaID]
		if !seen {
			byID[cand.RutaID] = cand
			order = append(order, cand.RutaID)
			continue
		}
		if cand.CreatedAt.Before(existing.CreatedAt) {
			continue
		}
		byID[cand.RutaID] = cand
	}

	records := make([]models.RouteRecord, 0, len(order))
	for _, id := range order {
		records = append(records, byID[id])
	}
	return records
}

// rederiveJurisdiction fills the top-level jurisdiction fields of legacy
// records that predate hoisting, using the destination city of the day's
// last segment. An empty city list leaves the fields empty; missing data
// never fails the summary.
func rederiveJurisdiction(record *models.RouteRecord) {
	if record.JurisdiccionFuerzaMilitar != "" || record.JurisdiccionPolicia != "" {
		return
	}
	HoistJurisdiction(record)
}

// bucketByDay groups deduplicated records into per-day buckets with their
// aggregates and the flat record list. Buckets sort by date; records within
// a bucket by creation time, ruta_id breaking exact ties.
func bucketByDay(records []models.RouteRecord, weekStart, source string) *models.WeeklyView {
	byDate := make(map[string][]models.RouteRecord)
	for _, r := range records {
		byDate[r.PlannedDate] = append(byDate[r.PlannedDate], r)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	view := &models.WeeklyView{
		WeekStart: weekStart,
		Source:    source,
		Days:      make([]models.DayBucket, 0, len(dates)),
		Records:   make([]models.RouteRecord, 0, len(records)),
	}
	for _, date := range dates {
		dayRecords := byDate[date]
		sort.SliceStable(dayRecords, func(i, j int) bool {
			if !dayRecords[i].CreatedAt.Equal(dayRecords[j].CreatedAt) {
				return dayRecords[i].CreatedAt.Before(dayRecords[j].CreatedAt)
			}
			return dayRecords[i].RutaID < dayRecords[j].RutaID
		})

		users := make(map[string]bool)
		total := 0.0
		withAverage := 0
		for _, r := range dayRecords {
			users[r.User.UserID] = true
			if r.Summary.AverageRisk != nil {
				total += *r.Summary.AverageRisk
				withAverage++
			}
		}
		aggregate := models.DayAggregate{
			Count:         len(dayRecords),
			DistinctUsers: len(users),
		}
		if withAverage > 0 {
			avg := round2(total / float64(withAverage))
			aggregate.AverageRisk = &avg
		}

		view.Days = append(view.Days, models.DayBucket{Date: date, Records: dayRecords, Aggregate: aggregate})
		view.Records = append(view.Records, dayRecords...)
	}
	view.RecordCount = len(view.Records)
	return view
}
