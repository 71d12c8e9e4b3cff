package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo2020/GestUnifServ/catalog"
	"github.com/Gustavo2020/GestUnifServ/models"
)

const testCatalogCSV = `Departamento,Municipio,Pais,Riesgo,Clasificacion,Jurisdiccion_fuerza_militar,Jurisdiccion_policia
Cundinamarca,Bogotá,Colombia,0.2,,Brigada 13,MEBOG
Antioquia,Medellín,Colombia,0.75,,IV Brigada,MEVAL
Valle del Cauca,Cali,Colombia,0.6,,III Brigada,MECAL
`

func newTestCatalog(t *testing.T) *catalog.RiskCatalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "riesgos.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0644))
	cat, err := catalog.NewRiskCatalog(path)
	require.NoError(t, err)
	return cat
}

// fakeBackupStore keeps records in memory and can be told to fail writes.
type fakeBackupStore struct {
	records map[string]models.RouteRecord
	order   []string
	failPut bool
}

func newFakeBackupStore() *fakeBackupStore {
	return &fakeBackupStore{records: make(map[string]models.RouteRecord)}
}

func (f *fakeBackupStore) SaveBackup(record models.RouteRecord) error {
	if f.failPut {
		return errors.New("disk full")
	}
	if _, seen := f.records[record.RutaID]; !seen {
		f.order = append(f.order, record.RutaID)
	}
	f.records[record.RutaID] = record
	return nil
}

func (f *fakeBackupStore) GetBackup(rutaID string) (*models.RouteRecord, error) {
	record, ok := f.records[rutaID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeBackupStore) ListBackups(start, end time.Time, userID string) ([]models.RouteRecord, error) {
	var out []models.RouteRecord
	for _, id := range f.order {
		record := f.records[id]
		date, err := time.Parse("2006-01-02", record.PlannedDate)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		if userID != "" && record.User.UserID != userID {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// fakeRelationalStore mimics the relational sink: rows keep no segments.
type fakeRelationalStore struct {
	rows    map[string]models.RouteRecord
	order   []string
	failPut bool
}

func newFakeRelationalStore() *fakeRelationalStore {
	return &fakeRelationalStore{rows: make(map[string]models.RouteRecord)}
}

func (f *fakeRelationalStore) SaveEvaluation(record models.RouteRecord) error {
	if f.failPut {
		return errors.New("connection refused")
	}
	record.Segments = nil // rows do not store segment detail
	if _, seen := f.rows[record.RutaID]; !seen {
		f.order = append(f.order, record.RutaID)
	}
	f.rows[record.RutaID] = record
	return nil
}

func (f *fakeRelationalStore) GetEvaluationsForWindow(start, end time.Time, userID string) ([]models.RouteRecord, error) {
	var out []models.RouteRecord
	for _, id := range f.order {
		row := f.rows[id]
		date, err := time.Parse("2006-01-02", row.PlannedDate)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		if userID != "" && row.User.UserID != userID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func newTestEvaluationService(t *testing.T) (*EvaluationService, *fakeBackupStore, *fakeRelationalStore, *clockwork.FakeClock) {
	t.Helper()
	backups := newFakeBackupStore()
	db := newFakeRelationalStore()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 22, 10, 0, 0, 0, time.UTC))
	svc := NewEvaluationService(newTestCatalog(t), nil, backups, db, nil, clock)
	return svc, backups, db, clock
}

func segment(index int, origin, dest string) models.Segment {
	return models.Segment{SegmentIndex: index, OriginMunicipio: origin, DestMunicipio: dest}
}

func TestEvaluateSegment(t *testing.T) {
	svc, _, _, _ := newTestEvaluationService(t)

	t.Run("destination-only scoring", func(t *testing.T) {
		city := svc.EvaluateSegment(segment(1, "Bogotá", "Medellín"))
		assert.True(t, city.Resolved)
		assert.Equal(t, "Medellín", city.Name)
		assert.Equal(t, 0.75, city.RiskScore)
		assert.Equal(t, models.RiskLevelHigh, city.RiskLevel)
		assert.Equal(t, "IV Brigada", city.JurisdiccionFuerzaMilitar)
		assert.Equal(t, "MEVAL", city.JurisdiccionPolicia)
	})

	t.Run("unknown destination tagged, not thrown", func(t *testing.T) {
		city := svc.EvaluateSegment(segment(1, "Bogotá", "Atlantis"))
		assert.False(t, city.Resolved)
		assert.Equal(t, "Atlantis", city.Name)
		assert.Equal(t, models.RiskLevelUnknown, city.RiskLevel)
		assert.Zero(t, city.RiskScore)
	})
}

func TestAggregateDay(t *testing.T) {
	svc, _, _, _ := newTestEvaluationService(t)

	t.Run("single segment Bogotá to Medellín", func(t *testing.T) {
		day := svc.AggregateDay("2025-09-22", []models.Segment{segment(1, "Bogotá", "Medellín")})
		require.Len(t, day.Cities, 1)
		assert.Equal(t, "Medellín", day.Cities[0].Name)
		require.NotNil(t, day.Summary.AverageRisk)
		assert.Equal(t, 0.75, *day.Summary.AverageRisk)
		assert.Equal(t, models.RiskLevelHigh, day.Summary.OverallLevel)
	})

	t.Run("unknown city excluded from the average", func(t *testing.T) {
		day := svc.AggregateDay("2025-09-22", []models.Segment{
			segment(1, "Bogotá", "Medellín"),
			segment(2, "Medellín", "Atlantis"),
			segment(3, "Atlantis", "Cali"),
		})
		require.Len(t, day.Cities, 3)
		assert.Equal(t, models.RiskLevelUnknown, day.Cities[1].RiskLevel)
		require.NotNil(t, day.Summary.AverageRisk)
		// (0.75 + 0.6) / 2, unknown city not averaged over
		assert.Equal(t, 0.68, *day.Summary.AverageRisk)
	})

	t.Run("cities preserve segment order", func(t *testing.T) {
		day := svc.AggregateDay("2025-09-22", []models.Segment{
			segment(3, "Medellín", "Cali"),
			segment(1, "Bogotá", "Medellín"),
		})
		require.Len(t, day.Cities, 2)
		assert.Equal(t, "Medellín", day.Cities[0].Name)
		assert.Equal(t, "Cali", day.Cities[1].Name)
	})

	t.Run("zero resolvable cities", func(t *testing.T) {
		day := svc.AggregateDay("2025-09-22", []models.Segment{segment(1, "Nowhere", "Atlantis")})
		assert.Nil(t, day.Summary.AverageRisk)
		assert.Equal(t, models.RiskLevelUnknown, day.Summary.OverallLevel)
	})

	t.Run("average rounded to two decimals", func(t *testing.T) {
		day := svc.AggregateDay("2025-09-22", []models.Segment{
			segment(1, "", "Bogotá"),
			segment(2, "", "Medellín"),
			segment(3, "", "Cali"),
		})
		require.NotNil(t, day.Summary.AverageRisk)
		// (0.2 + 0.75 + 0.6) / 3 = 0.51666...
		assert.Equal(t, 0.52, *day.Summary.AverageRisk)
	})
}

func TestEvaluateDay(t *testing.T) {
	req := func() models.EvaluateDayRequest {
		return models.EvaluateDayRequest{
			Date: "2025-09-22",
			User: models.UserInfo{UserID: "user_123", Filial: "ENLAZA"},
			Segments: []models.Segment{
				segment(1, "Bogotá", "Cali"),
				segment(2, "Cali", "Medellín"),
			},
		}
	}

	t.Run("builds and dual-writes the record", func(t *testing.T) {
		svc, backups, db, clock := newTestEvaluationService(t)
		record, err := svc.EvaluateDay(req(), "req-1")
		require.NoError(t, err)
		require.NotNil(t, record)

		assert.True(t, strings.HasPrefix(record.RutaID, "RUTA-"))
		assert.Equal(t, clock.Now(), record.CreatedAt)
		assert.Equal(t, "2025-09-22", record.PlannedDate)
		assert.Equal(t, models.StatusPendingValidation, record.Status)
		assert.Equal(t, "MS Teams", record.Platform)

		// Jurisdiction hoisted from the last segment's destination (Medellín).
		assert.Equal(t, "IV Brigada", record.JurisdiccionFuerzaMilitar)
		assert.Equal(t, "MEVAL", record.JurisdiccionPolicia)

		// Both sinks hold the record under the same ruta_id.
		backup, err := backups.GetBackup(record.RutaID)
		require.NoError(t, err)
		require.NotNil(t, backup)
		assert.Len(t, backup.Segments, 2)
		_, inDB := db.rows[record.RutaID]
		assert.True(t, inDB)
	})

	t.Run("repeated evaluations get distinct ruta_ids", func(t *testing.T) {
		svc, _, _, _ := newTestEvaluationService(t)
		a, err := svc.EvaluateDay(req(), "req-a")
		require.NoError(t, err)
		b, err := svc.EvaluateDay(req(), "req-b")
		require.NoError(t, err)
		assert.NotEqual(t, a.RutaID, b.RutaID)
	})

	t.Run("all cities unknown rejects the request", func(t *testing.T) {
		svc, _, _, _ := newTestEvaluationService(t)
		bad := req()
		bad.Segments = []models.Segment{segment(1, "X", "Atlantis"), segment(2, "Y", "Mordor")}
		_, err := svc.EvaluateDay(bad, "req-2")
		assert.ErrorIs(t, err, ErrUnknownMunicipality)
	})

	t.Run("invalid date rejected", func(t *testing.T) {
		svc, _, _, _ := newTestEvaluationService(t)
		bad := req()
		bad.Date = "22/09/2025"
		_, err := svc.EvaluateDay(bad, "req-3")
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("backup sink failure is partial persistence", func(t *testing.T) {
		svc, backups, db, _ := newTestEvaluationService(t)
		backups.failPut = true

		record, err := svc.EvaluateDay(req(), "req-4")
		require.NotNil(t, record, "record returned so the caller can retry")

		var partial *PartialPersistenceError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, SinkBackup, partial.FailedSink)
		assert.Equal(t, record.RutaID, partial.RutaID)

		// The other sink still got its write.
		_, inDB := db.rows[record.RutaID]
		assert.True(t, inDB)
	})

	t.Run("relational sink failure is partial persistence", func(t *testing.T) {
		svc, _, db, _ := newTestEvaluationService(t)
		db.failPut = true

		record, err := svc.EvaluateDay(req(), "req-5")
		require.NotNil(t, record)

		var partial *PartialPersistenceError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, SinkRelational, partial.FailedSink)
	})

	t.Run("both sinks failing is not partial", func(t *testing.T) {
		svc, backups, db, _ := newTestEvaluationService(t)
		backups.failPut = true
		db.failPut = true

		_, err := svc.EvaluateDay(req(), "req-6")
		require.Error(t, err)
		var partial *PartialPersistenceError
		assert.False(t, errors.As(err, &partial))
	})
}

func TestEvaluateCities(t *testing.T) {
	t.Run("legacy flat city list", func(t *testing.T) {
		svc, _, _, clock := newTestEvaluationService(t)
		record, err := svc.EvaluateCities(models.EvaluateRequest{
			UserID:   "user_123",
			Platform: "MS Teams",
			Cities:   []models.CityInput{{Name: "Bogotá"}, {Name: "Medellín"}},
		}, "req-7")
		require.NoError(t, err)

		require.Len(t, record.Cities, 2)
		assert.Equal(t, "Bogotá", record.Cities[0].Name)
		assert.Equal(t, clock.Now().Format("2006-01-02"), record.PlannedDate, "date defaults to today")
		require.NotNil(t, record.Summary.AverageRisk)
		assert.Equal(t, 0.48, *record.Summary.AverageRisk) // (0.2 + 0.75) / 2 rounded
		assert.Equal(t, models.RiskLevelMedium, record.Summary.OverallLevel)
	})

	t.Run("empty city list rejected", func(t *testing.T) {
		svc, _, _, _ := newTestEvaluationService(t)
		_, err := svc.EvaluateCities(models.EvaluateRequest{UserID: "u"}, "req-8")
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("client-sent scores ignored", func(t *testing.T) {
		svc, _, _, _ := newTestEvaluationService(t)
		bogus := 0.99
		record, err := svc.EvaluateCities(models.EvaluateRequest{
			UserID: "u",
			Cities: []models.CityInput{{Name: "Bogotá", RiskScore: &bogus}},
		}, "req-9")
		require.NoError(t, err)
		assert.Equal(t, 0.2, record.Cities[0].RiskScore)
	})
}

func TestDriverEnrichment(t *testing.T) {
	driversPath := filepath.Join(t.TempDir(), "conductores.csv")
	drivers, err := catalog.NewDriverCatalog(driversPath)
	require.NoError(t, err)
	require.NoError(t, drivers.Upsert(models.Driver{
		NationalID: "80223344",
		FirstName:  "Carlos",
		LastName:   "Ramírez",
		Phone:      "+573118765432",
	}))

	backups := newFakeBackupStore()
	db := newFakeRelationalStore()
	svc := NewEvaluationService(newTestCatalog(t), drivers, backups, db, nil, clockwork.NewFakeClock())

	seg := segment(1, "Bogotá", "Medellín")
	seg.DriverNationalID = "80223344"
	record, err := svc.EvaluateDay(models.EvaluateDayRequest{
		Date:     "2025-09-22",
		User:     models.UserInfo{UserID: "u"},
		Segments: []models.Segment{seg},
	}, "")
	require.NoError(t, err)

	require.Len(t, record.Segments, 1)
	assert.Equal(t, "Carlos", record.Segments[0].DriverFirstName)
	assert.Equal(t, "Ramírez", record.Segments[0].DriverLastName)
	assert.Equal(t, "+573118765432", record.Segments[0].DriverPhone)
}
