package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/pkg/utils"
)

// TripQueries are the analytics over the loaded trips table.
type TripQueries interface {
	KPIs(ctx context.Context, f model.TripFilter) (*model.KPIs, error)
	PeakValley(ctx context.Context, f model.TripFilter) ([]model.PeriodStats, error)
	Predict(ctx context.Context, from, to int) (*model.Prediction, error)
	Hourly(ctx context.Context, f model.TripFilter) ([]model.HourCount, error)
	Zones(ctx context.Context, f model.TripFilter) ([]model.ZoneCount, error)
	Histogram(ctx context.Context, f model.TripFilter) ([]model.PriceBucket, error)
	TopZones(ctx context.Context, f model.TripFilter) ([]model.ZoneCount, error)
	Alert(ctx context.Context, f model.TripFilter) (*model.BusiestSlot, error)
}

// RunQueries read the loader run ledger.
type RunQueries interface {
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	GetRun(ctx context.Context, id string) (*model.RunSummary, error)
}

// Handler serves the trips and runs endpoints.
type Handler struct {
	Trips TripQueries
	Runs  RunQueries
}

func New(trips TripQueries, runs RunQueries) *Handler {
	return &Handler{Trips: trips, Runs: runs}
}

// parseFilter reads the day, time and month query parameters. "all" or an
// absent parameter means no restriction.
func parseFilter(r *http.Request) (model.TripFilter, error) {
	var f model.TripFilter
	q := r.URL.Query()

	switch day := q.Get("day"); day {
	case "", "all":
	case "weekday":
		f.Days = []int{1, 2, 3, 4, 5}
	case "weekend":
		f.Days = []int{0, 6}
	default:
		n, ok := utils.ParseIntInRange(day, 0, 6)
		if !ok {
			return f, fmt.Errorf("invalid day %q: want all, weekday, weekend or 0-6", day)
		}
		f.Days = []int{n}
	}

	switch tod := q.Get("time"); tod {
	case "", "all":
	case model.Morning, model.Afternoon, model.Night:
		f.TimeOfDay = tod
	default:
		return f, fmt.Errorf("invalid time %q: want all, morning, afternoon or night", tod)
	}

	switch month := q.Get("month"); month {
	case "", "all":
	default:
		n, ok := utils.ParseIntInRange(month, 1, 12)
		if !ok {
			return f, fmt.Errorf("invalid month %q: want all or 1-12", month)
		}
		f.Month = n
	}

	return f, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func serverError(w http.ResponseWriter, what string, err error) {
	log.Printf("❌ %s: %v", what, err)
	http.Error(w, what, http.StatusInternalServerError)
}
