package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"nyc-trip-loader/internal/model"
)

// Peak hours of the peak/off-peak comparison.
var peakHours = []int{7, 8, 9, 17, 18, 19}

const (
	PeriodPeak    = "peak"
	PeriodOffPeak = "off_peak"
)

// Prediction fallbacks, most specific first.
const (
	PredictionExact  = "exact"
	PredictionOrigin = "origin_zone"
	PredictionGlobal = "global"
)

var (
	pickupCol   = quote("tpep_pickup_datetime")
	dropoffCol  = quote("tpep_dropoff_datetime")
	distanceCol = quote("trip_distance")
	totalCol    = quote("total_amount")
	fareCol     = quote("fare_amount")
	tipCol      = quote("tip_amount")
	puCol       = quote("PULocationID")
	doCol       = quote("DOLocationID")
)

// where renders filter conditions plus any extra ones as a WHERE clause.
// Filter values are integers or known constants, never raw request text.
func (db *DB) where(f model.TripFilter, extra ...string) string {
	var conds []string
	d := db.dialect

	if len(f.Days) > 0 {
		days := make([]string, len(f.Days))
		for i, day := range f.Days {
			days[i] = fmt.Sprintf("%d", day)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", d.dayOfWeek(pickupCol), strings.Join(days, ", ")))
	}

	switch f.TimeOfDay {
	case model.Morning:
		conds = append(conds, fmt.Sprintf("%s BETWEEN 6 AND 11", d.hour(pickupCol)))
	case model.Afternoon:
		conds = append(conds, fmt.Sprintf("%s BETWEEN 12 AND 17", d.hour(pickupCol)))
	case model.Night:
		conds = append(conds, fmt.Sprintf("(%s >= 18 OR %s < 6)", d.hour(pickupCol), d.hour(pickupCol)))
	}

	if f.Month > 0 {
		conds = append(conds, fmt.Sprintf("%s = %d", d.month(pickupCol), f.Month))
	}

	conds = append(conds, extra...)
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

// KPIs computes the headline aggregates over trips with a sane duration and distance.
func (db *DB) KPIs(ctx context.Context, f model.TripFilter) (*model.KPIs, error) {
	seconds := db.dialect.secondsBetween(dropoffCol, pickupCol)
	query := fmt.Sprintf(`
		SELECT
			AVG(%[1]s),
			AVG(%[2]s),
			AVG(%[3]s),
			AVG(%[4]s / NULLIF(%[1]s, 0)),
			AVG(%[1]s / NULLIF((%[5]s) / 3600.0, 0)),
			COUNT(*)
		FROM %[6]s %[7]s`,
		distanceCol, totalCol, tipCol, fareCol, seconds, quote(db.table),
		db.where(f, dropoffCol+" > "+pickupCol, distanceCol+" > 0.1"))

	var dist, price, tip, ppm, speed sql.NullFloat64
	var k model.KPIs
	if err := db.conn.QueryRowContext(ctx, query).Scan(&dist, &price, &tip, &ppm, &speed, &k.TotalTrips); err != nil {
		return nil, fmt.Errorf("failed to compute kpis: %w", err)
	}
	k.AvgDistance = nullable(dist)
	k.AvgPrice = nullable(price)
	k.AvgTip = nullable(tip)
	k.PricePerMile = nullable(ppm)
	k.AvgSpeed = nullable(speed)
	return &k, nil
}

// PeakValley compares peak and off-peak pickups. Price per mile is weighted:
// total revenue over total distance.
func (db *DB) PeakValley(ctx context.Context, f model.TripFilter) ([]model.PeriodStats, error) {
	hours := make([]string, len(peakHours))
	for i, h := range peakHours {
		hours[i] = fmt.Sprintf("%d", h)
	}
	query := fmt.Sprintf(`
		SELECT
			CASE WHEN %s IN (%s) THEN '%s' ELSE '%s' END AS period,
			AVG(%s),
			SUM(%s) / NULLIF(SUM(%s), 0)
		FROM %s %s
		GROUP BY 1
		ORDER BY 1 DESC`,
		db.dialect.hour(pickupCol), strings.Join(hours, ", "), PeriodPeak, PeriodOffPeak,
		distanceCol, totalCol, distanceCol, quote(db.table), db.where(f, distanceCol+" > 0"))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to compare peak hours: %w", err)
	}
	defer rows.Close()

	stats := []model.PeriodStats{}
	for rows.Next() {
		var s model.PeriodStats
		var dist, ppm sql.NullFloat64
		if err := rows.Scan(&s.Period, &dist, &ppm); err != nil {
			return nil, err
		}
		s.AvgDistance = nullable(dist)
		s.WeightedPricePerMile = nullable(ppm)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Predict estimates price and duration between two zones, falling back to the
// origin zone and then to all trips when there is no history for the pair.
func (db *DB) Predict(ctx context.Context, from, to int) (*model.Prediction, error) {
	minutes := fmt.Sprintf("(%s) / 60.0", db.dialect.secondsBetween(dropoffCol, pickupCol))
	base := fmt.Sprintf("SELECT AVG(%s), AVG(%s), COUNT(*) FROM %s WHERE %s > 0",
		totalCol, minutes, quote(db.table), distanceCol)

	attempts := []struct {
		kind  string
		query string
		args  []interface{}
	}{
		{PredictionExact, base + fmt.Sprintf(" AND %s = %s AND %s = %s",
			puCol, db.dialect.placeholder(1), doCol, db.dialect.placeholder(2)), []interface{}{from, to}},
		{PredictionOrigin, base + fmt.Sprintf(" AND %s = %s", puCol, db.dialect.placeholder(1)), []interface{}{from}},
		{PredictionGlobal, base, nil},
	}

	for _, a := range attempts {
		var price, duration sql.NullFloat64
		p := model.Prediction{Type: a.kind}
		if err := db.conn.QueryRowContext(ctx, a.query, a.args...).Scan(&price, &duration, &p.Samples); err != nil {
			return nil, fmt.Errorf("failed to predict (%s): %w", a.kind, err)
		}
		if p.Samples > 0 || a.kind == PredictionGlobal {
			p.PredictedPrice = nullable(price)
			p.DurationMin = nullable(duration)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no prediction for %d -> %d", from, to)
}

// Hourly counts pickups per hour of day.
func (db *DB) Hourly(ctx context.Context, f model.TripFilter) ([]model.HourCount, error) {
	query := fmt.Sprintf("SELECT %s AS hour, COUNT(*) FROM %s %s GROUP BY 1 ORDER BY 1",
		db.dialect.hour(pickupCol), quote(db.table), db.where(f))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count hourly trips: %w", err)
	}
	defer rows.Close()

	out := []model.HourCount{}
	for rows.Next() {
		var h model.HourCount
		if err := rows.Scan(&h.Hour, &h.Count); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Zones counts pickups per zone, ordered by zone id.
func (db *DB) Zones(ctx context.Context, f model.TripFilter) ([]model.ZoneCount, error) {
	return db.zoneCounts(ctx, f, "ORDER BY 1", "failed to count zone trips")
}

// TopZones returns the five busiest pickup zones. Ties go to the lower zone id.
func (db *DB) TopZones(ctx context.Context, f model.TripFilter) ([]model.ZoneCount, error) {
	return db.zoneCounts(ctx, f, "ORDER BY 2 DESC, 1 ASC LIMIT 5", "failed to rank zones")
}

func (db *DB) zoneCounts(ctx context.Context, f model.TripFilter, tail, errMsg string) ([]model.ZoneCount, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s %s GROUP BY 1 %s",
		puCol, quote(db.table), db.where(f, puCol+" IS NOT NULL"), tail)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	defer rows.Close()

	out := []model.ZoneCount{}
	for rows.Next() {
		var z model.ZoneCount
		if err := rows.Scan(&z.ZoneID, &z.Count); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// Histogram buckets total_amount in $10 steps between $0 and $100.
func (db *DB) Histogram(ctx context.Context, f model.TripFilter) ([]model.PriceBucket, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s %s GROUP BY 1 ORDER BY 1",
		db.dialect.bucket10(totalCol), quote(db.table), db.where(f, totalCol+" BETWEEN 0 AND 100"))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build price histogram: %w", err)
	}
	defer rows.Close()

	out := []model.PriceBucket{}
	for rows.Next() {
		var lower float64
		var b model.PriceBucket
		if err := rows.Scan(&lower, &b.Count); err != nil {
			return nil, err
		}
		lo := int(math.Floor(lower))
		b.Range = fmt.Sprintf("$%d-%d", lo, lo+10)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Alert returns the busiest day-of-week/hour slot, or nil when no trip matches.
func (db *DB) Alert(ctx context.Context, f model.TripFilter) (*model.BusiestSlot, error) {
	query := fmt.Sprintf("SELECT %s, %s, COUNT(*) FROM %s %s GROUP BY 1, 2 ORDER BY 3 DESC, 1, 2 LIMIT 1",
		db.dialect.dayOfWeek(pickupCol), db.dialect.hour(pickupCol), quote(db.table), db.where(f, pickupCol+" IS NOT NULL"))

	var slot model.BusiestSlot
	err := db.conn.QueryRowContext(ctx, query).Scan(&slot.DayNum, &slot.HourNum, &slot.TotalTrips)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find busiest slot: %w", err)
	}
	return &slot, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
