package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyc-trip-loader/internal/model"
)

// openPostgres connects to the database named by TRIPLOAD_TEST_POSTGRES_URL
// with a table of its own, dropped when the test ends.
func openPostgres(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TRIPLOAD_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TRIPLOAD_TEST_POSTGRES_URL not set")
	}

	table := "trips_test_" + strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	db, err := Open(context.Background(), DriverPostgres, dsn, table)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.conn.Exec("DROP TABLE IF EXISTS " + quote(table))
		db.Close()
	})
	return db
}

func TestPostgresResetAndAppend(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	existed, err := db.ResetTrips(ctx)
	require.NoError(t, err)
	assert.False(t, existed)
	existed, err = db.ResetTrips(ctx)
	require.NoError(t, err)
	assert.False(t, existed)

	n, err := db.AppendTrips(ctx, sampleTrips())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	kpis, err := db.KPIs(ctx, model.TripFilter{Days: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), kpis.TotalTrips)

	existed, err = db.ResetTrips(ctx)
	require.NoError(t, err)
	assert.True(t, existed)
	count, err := db.CountTrips(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgresAppendRollsBack(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	_, err := db.AppendTrips(ctx, sampleTrips()[:1])
	require.NoError(t, err)

	// COPY rejects the text in an integer column, after the new column was added.
	bad := sampleTrips()
	bad[3].Additional = []model.Field{{Column: model.Column{Name: "zone_count", Kind: model.KindInteger}, Value: "many"}}
	n, err := db.AppendTrips(ctx, bad)
	require.Error(t, err)
	assert.Zero(t, n)

	count, err := db.CountTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	tx, err := db.conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	cols, err := db.columnNames(ctx, tx)
	require.NoError(t, err)
	assert.False(t, cols["zone_count"], "the added column was rolled back")
	assert.True(t, cols["airport_fee"])
}

func TestPostgresRunLedger(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	run := &model.RunSummary{
		ID:        uuid.New().String(),
		Year:      "2024",
		SampleCap: 200,
		Seed:      42,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, db.StartRun(ctx, run))
	require.NoError(t, db.RecordMonth(ctx, run.ID, model.MonthResult{
		Month: "01", State: model.StateCleaned, Outcome: model.OutcomeLoaded, Appended: 200, Seed: 42}))
	run.Status = model.RunStatusCompleted
	require.NoError(t, db.FinishRun(ctx, *run))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	require.Len(t, got.Months, 1)
	assert.Equal(t, int64(200), got.RowsAppended)

	runs, err := db.ListRuns(ctx, 500)
	require.NoError(t, err)
	found := false
	for _, r := range runs {
		if r.ID == run.ID {
			found = true
			assert.Equal(t, 1, r.MonthsLoaded)
		}
	}
	assert.True(t, found)
}
