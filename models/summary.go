// models/summary.go
package models

// DayAggregate carries the per-day figures of a weekly summary.
// AverageRisk is the mean of the day's record averages (records whose own
// average is nil are skipped); nil when no record of the day has one.
type DayAggregate struct {
	Count         int      `json:"count"`
	DistinctUsers int      `json:"distinct_users"`
	AverageRisk   *float64 `json:"average_risk"`
}

// DayBucket groups the route records planned for a single date.
// Records are ordered by creation time (ruta_id creation order).
type DayBucket struct {
	Date      string        `json:"date"`
	Records   []RouteRecord `json:"records"`
	Aggregate DayAggregate  `json:"aggregate"`
}

// WeeklyView is the derived summary of all route records planned inside a
// 7-day window. It is recomputed on every request and never persisted.
// Records holds the same deduplicated records as Days, flattened, so
// consumers can re-render full detail without walking the buckets.
type WeeklyView struct {
	WeekStart   string        `json:"week_start"`
	Source      string        `json:"source"`
	RecordCount int           `json:"record_count"`
	Days        []DayBucket   `json:"days"`
	Records     []RouteRecord `json:"records"`
}

// Weekly summary sources.
const (
	SourceJSON = "json"
	SourceDB   = "db"
)
