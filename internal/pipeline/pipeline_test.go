package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/internal/store"
	"nyc-trip-loader/pkg/utils"
)

// failingMonthStore rejects appends of trips picked up in one month.
type failingMonthStore struct {
	*store.DB
	month time.Month
}

func (s failingMonthStore) AppendTrips(ctx context.Context, trips []model.TripRecord) (int64, error) {
	if len(trips) > 0 {
		if ts, ok := trips[0].PickupTime(); ok && ts.Month() == s.month {
			return 0, errors.New("connection reset by peer")
		}
	}
	return s.DB.AppendTrips(ctx, trips)
}

// lockedStore fails every reset, like a table held by another session.
type lockedStore struct {
	*store.DB
}

func (s lockedStore) ResetTrips(context.Context) (bool, error) {
	return false, errors.New("canceling statement due to lock timeout")
}

// cancellingStore cancels the run once the first batch is appended.
type cancellingStore struct {
	*store.DB
	cancel context.CancelFunc
}

func (s cancellingStore) AppendTrips(ctx context.Context, trips []model.TripRecord) (int64, error) {
	n, err := s.DB.AppendTrips(ctx, trips)
	s.cancel()
	return n, err
}

type harness struct {
	spec    model.JobSpec
	remote  string
	dbPath  string
	db      *store.DB
	scratch string
	logs    *bytes.Buffer
	metrics *Metrics
}

// newHarness serves the given monthly files over HTTP and points a loader
// spec at them, with a SQLite destination.
func newHarness(t *testing.T, files map[string][]model.TripRecord) *harness {
	t.Helper()

	remote := t.TempDir()
	for month, trips := range files {
		writeParquet(t, filepath.Join(remote, fmt.Sprintf("yellow_tripdata_2024-%s.parquet", month)), trips)
	}
	srv := httptest.NewServer(http.StripPrefix("/trip-data", http.FileServer(http.Dir(remote))))
	t.Cleanup(srv.Close)

	dbPath := filepath.Join(t.TempDir(), "trips.db")
	db, err := store.Open(context.Background(), store.DriverSQLite, dbPath, "trips")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	scratch := t.TempDir()
	return &harness{
		spec: model.JobSpec{
			Year:      "2024",
			Months:    []string{"01", "02", "03", "04", "05", "06"},
			SampleCap: 200,
			Seed:      42,
			Source: model.SourceSpec{
				BaseURL: srv.URL + "/trip-data",
				Prefix:  "yellow_tripdata",
				Ext:     "parquet",
			},
			Database:   model.DatabaseSpec{Driver: store.DriverSQLite, Table: "trips"},
			ScratchDir: scratch,
		},
		remote:  remote,
		dbPath:  dbPath,
		db:      db,
		scratch: scratch,
		logs:    &bytes.Buffer{},
		metrics: NewMetrics(),
	}
}

func (h *harness) deps(s TripStore) Dependencies {
	return Dependencies{
		Transport: NewHTTPTransport(10 * time.Second),
		Store:     s,
		Ledger:    h.db,
		Metrics:   h.metrics,
		Logger:    log.New(h.logs, "", 0),
	}
}

func (h *harness) scratchFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func monthlyAppended(summary model.RunSummary) map[string]int64 {
	out := map[string]int64{}
	for _, m := range summary.Months {
		out[m.Month] = m.Appended
	}
	return out
}

func TestRunScenarios(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 300, 40), // over the cap
		"02": monthTrips(time.February, 50, 10), // under the cap
		// "03" is missing upstream
		"04": monthTrips(time.April, 120, 0),
		"05": monthTrips(time.May, 80, 5), // store fails
		"06": monthTrips(time.June, 10, 0),
	})

	summary := NewLoader(h.spec, h.deps(failingMonthStore{DB: h.db, month: time.May})).Run(context.Background())

	assert.Equal(t, model.RunStatusCompleted, summary.Status)
	require.Len(t, summary.Months, 6)
	assert.Equal(t, map[string]int64{"01": 200, "02": 50, "03": 0, "04": 120, "05": 0, "06": 10}, monthlyAppended(summary))
	assert.Equal(t, 4, summary.MonthsLoaded)
	assert.Equal(t, 2, summary.MonthsSkipped)
	assert.Equal(t, int64(380), summary.RowsAppended)

	count, err := h.db.CountTrips(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(380), count)

	jan := summary.Months[0]
	assert.Equal(t, int64(340), jan.Decoded)
	assert.Equal(t, int64(300), jan.Qualifying)
	assert.False(t, jan.FullSetKept)
	assert.Equal(t, []model.MonthState{
		model.StatePending, model.StateFetched, model.StateFiltered,
		model.StateSampled, model.StatePersisted, model.StateCleaned,
	}, jan.Trail)

	feb := summary.Months[1]
	assert.True(t, feb.FullSetKept)
	assert.Contains(t, h.logs.String(), "full set kept")

	mar := summary.Months[2]
	assert.Equal(t, model.OutcomeSkipped, mar.Outcome)
	assert.Equal(t, model.ReasonFetchFailed, mar.Reason)
	assert.Equal(t, []model.MonthState{model.StatePending, model.StateCleaned}, mar.Trail)

	may := summary.Months[4]
	assert.Equal(t, model.ReasonPersistFailed, may.Reason)
	assert.Equal(t, model.StateCleaned, may.State)
	assert.Contains(t, may.Err, "connection reset")

	assert.Empty(t, h.scratchFiles(t), "every scratch file is reclaimed")
	assert.Contains(t, h.logs.String(), "(new or empty table, continuing...)")
}

func TestRunResetsPreviousLoad(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 30, 0),
	})
	h.spec.Months = []string{"01"}

	first := NewLoader(h.spec, h.deps(h.db)).Run(context.Background())
	assert.False(t, first.TableExisted)

	second := NewLoader(h.spec, h.deps(h.db)).Run(context.Background())
	assert.True(t, second.TableExisted)

	count, err := h.db.CountTrips(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(30), count, "a rerun replaces rather than accumulates")
}

func TestRunIsReproducible(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 500, 0),
	})
	h.spec.Months = []string{"01"}
	h.spec.SampleCap = 25

	zones := func() map[int]int64 {
		NewLoader(h.spec, h.deps(h.db)).Run(context.Background())
		counts, err := h.db.Zones(context.Background(), model.TripFilter{})
		require.NoError(t, err)
		out := map[int]int64{}
		for _, z := range counts {
			out[z.ZoneID] = z.Count
		}
		return out
	}
	assert.Equal(t, zones(), zones())
}

func TestSeedPerMonthChangesSeed(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"02": monthTrips(time.February, 5, 0),
	})
	h.spec.Months = []string{"02"}
	h.spec.SeedPerMonth = true

	summary := NewLoader(h.spec, h.deps(h.db)).Run(context.Background())
	assert.Equal(t, int64(44), summary.Months[0].Seed)
}

func TestProcessMonthScratchMissing(t *testing.T) {
	h := newHarness(t, nil)
	deps := h.deps(h.db)
	deps.Transport = transportFunc(func(context.Context, string, string) error { return nil })

	res := NewLoader(h.spec, deps).ProcessMonth(context.Background(), "01")
	assert.Equal(t, model.ReasonFetchFailed, res.Reason)
	assert.Contains(t, res.Err, ErrScratchMissing.Error())
}

func TestProcessMonthReclaimsPartialDownload(t *testing.T) {
	h := newHarness(t, nil)
	deps := h.deps(h.db)
	deps.Transport = transportFunc(func(_ context.Context, _, dest string) error {
		os.WriteFile(dest, []byte("PAR1 trunc"), 0644)
		return errors.New("unexpected EOF")
	})

	res := NewLoader(h.spec, deps).ProcessMonth(context.Background(), "01")
	assert.Equal(t, model.ReasonFetchFailed, res.Reason)
	assert.Empty(t, h.scratchFiles(t))
}

func TestProcessMonthCorruptFile(t *testing.T) {
	h := newHarness(t, nil)
	deps := h.deps(h.db)
	deps.Transport = transportFunc(func(_ context.Context, _, dest string) error {
		return os.WriteFile(dest, []byte("this is not a parquet file at all"), 0644)
	})

	res := NewLoader(h.spec, deps).ProcessMonth(context.Background(), "07")
	assert.Equal(t, model.OutcomeSkipped, res.Outcome)
	assert.Equal(t, model.ReasonDecodeFailed, res.Reason)
	assert.Equal(t, model.StateCleaned, res.State)
	assert.Empty(t, h.scratchFiles(t))
	assert.Contains(t, h.logs.String(), "[07]")
}

func TestRunRecordsLedgerAndMetrics(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 20, 3),
	})
	h.spec.Months = []string{"01", "03"}

	summary := NewLoader(h.spec, h.deps(h.db)).Run(context.Background())

	run, err := h.db.GetRun(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	require.Len(t, run.Months, 2)
	assert.Equal(t, int64(20), run.Months[0].Appended)
	assert.Equal(t, model.ReasonFetchFailed, run.Months[1].Reason)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.months.WithLabelValues("loaded", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.months.WithLabelValues("skipped", "fetch_failed")))
	assert.Equal(t, 23.0, testutil.ToFloat64(h.metrics.rows.WithLabelValues("decoded")))
	assert.Equal(t, 20.0, testutil.ToFloat64(h.metrics.rows.WithLabelValues("appended")))

	path := filepath.Join(t.TempDir(), "tripload.prom")
	require.NoError(t, h.metrics.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tripload_months_total")
}

func TestRunWithoutOptionalDependencies(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 5, 0),
	})
	h.spec.Months = []string{"01"}

	summary := NewLoader(h.spec, Dependencies{
		Transport: NewHTTPTransport(10 * time.Second),
		Store:     h.db,
	}).Run(context.Background())
	assert.Equal(t, int64(5), summary.RowsAppended)
}

func TestRunContinuesAfterResetFailure(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 5, 0),
	})
	h.spec.Months = []string{"01"}

	summary := NewLoader(h.spec, h.deps(lockedStore{h.db})).Run(context.Background())
	assert.Contains(t, summary.ResetError, "lock timeout")
	assert.False(t, summary.TableExisted)
	assert.Equal(t, 1, summary.MonthsLoaded)
	assert.Equal(t, int64(5), summary.RowsAppended)
	assert.Contains(t, h.logs.String(), "Could not clear table")
}

func TestRunAcrossFileLayouts(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 20, 5),
	})
	writeRows(t, filepath.Join(h.remote, "yellow_tripdata_2024-02.parquet"), new(legacyTrip), legacyTrips(monthTrips(time.February, 30, 5)))
	writeRows(t, filepath.Join(h.remote, "yellow_tripdata_2024-03.parquet"), new(recentTrip), recentTrips(monthTrips(time.March, 40, 0)))
	h.spec.Months = []string{"01", "02", "03"}

	summary := NewLoader(h.spec, h.deps(h.db)).Run(context.Background())
	assert.Equal(t, 3, summary.MonthsLoaded)
	assert.Equal(t, map[string]int64{"01": 20, "02": 30, "03": 40}, monthlyAppended(summary))
	assert.Contains(t, summary.Months[1].MissingColumns, "Airport_fee")
	assert.Equal(t, []string{"cbd_congestion_fee"}, summary.Months[2].AdditionalColumns)
	assert.Contains(t, h.logs.String(), "Carrying extra column(s) cbd_congestion_fee")

	conn, err := sql.Open(store.DriverSQLite, h.dbPath)
	require.NoError(t, err)
	defer conn.Close()

	var withFee, withAirportFee int
	require.NoError(t, conn.QueryRow(`SELECT COUNT("cbd_congestion_fee"), COUNT("Airport_fee") FROM trips`).Scan(&withFee, &withAirportFee))
	assert.Equal(t, 40, withFee)
	assert.Equal(t, 40, withAirportFee)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	h := newHarness(t, map[string][]model.TripRecord{
		"01": monthTrips(time.January, 10, 0),
		"02": monthTrips(time.February, 10, 0),
		"03": monthTrips(time.March, 10, 0),
	})
	h.spec.Months = []string{"01", "02", "03"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	summary := NewLoader(h.spec, h.deps(cancellingStore{DB: h.db, cancel: cancel})).Run(ctx)

	assert.Equal(t, model.RunStatusInterrupted, summary.Status)
	require.Len(t, summary.Months, 1)
	assert.Equal(t, 1, summary.MonthsLoaded)
	assert.Contains(t, h.logs.String(), "Load interrupted")
	assert.NotContains(t, h.logs.String(), "Load complete")
	assert.Empty(t, h.scratchFiles(t))

	run, err := h.db.GetRun(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusInterrupted, run.Status)
	require.NotNil(t, run.FinishedAt)
	require.Len(t, run.Months, 1)
	assert.Equal(t, int64(10), run.RowsAppended)
}

func TestQualifies(t *testing.T) {
	good := monthTrips(time.January, 1, 0)[0]
	assert.True(t, Qualifies(&good))
	assert.False(t, Qualifies(nil))

	cases := map[string]func(*model.TripRecord){
		"no pickup zone":   func(r *model.TripRecord) { r.PULocationID = nil },
		"no dropoff zone":  func(r *model.TripRecord) { r.DOLocationID = nil },
		"zero distance":    func(r *model.TripRecord) { r.TripDistance = utils.Float64Ptr(0) },
		"missing distance": func(r *model.TripRecord) { r.TripDistance = nil },
		"negative fare":    func(r *model.TripRecord) { r.FareAmount = utils.Float64Ptr(-1) },
		"missing fare":     func(r *model.TripRecord) { r.FareAmount = nil },
	}
	for name, mutate := range cases {
		rec := good
		mutate(&rec)
		assert.False(t, Qualifies(&rec), name)
	}
}
