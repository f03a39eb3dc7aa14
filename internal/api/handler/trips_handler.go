package handler

import (
	"math"
	"net/http"
	"strconv"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/pkg/utils"
)

// filtered runs a filtered query and writes its result as JSON.
func (h *Handler) filtered(w http.ResponseWriter, r *http.Request, what string,
	query func(r *http.Request, f model.TripFilter) (interface{}, error)) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := query(r, f)
	if err != nil {
		serverError(w, what, err)
		return
	}
	writeJSON(w, result)
}

// GetKPIs returns headline trip aggregates
// @Summary Trip KPIs
// @Description Average distance, price, tip, price per mile and speed, plus the trip count
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6 (0 = Sunday)"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {object} model.KPIs
// @Failure 400 {string} string "Invalid filter"
// @Failure 500 {string} string "Internal server error"
// @Router /trips/kpis [get]
func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to compute KPIs", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.KPIs(r.Context(), f)
	})
}

// GetPeakValley compares peak and off-peak hours
// @Summary Peak vs off-peak
// @Description Average distance and weighted price per mile for peak hours (7-9, 17-19) and the rest
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {array} model.PeriodStats
// @Failure 400 {string} string "Invalid filter"
// @Failure 500 {string} string "Internal server error"
// @Router /trips/peak-valley [get]
func (h *Handler) GetPeakValley(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to compare peak hours", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.PeakValley(r.Context(), f)
	})
}

// GetPrediction estimates price and duration between two zones
// @Summary Predict a trip
// @Description Average price and duration for the zone pair, falling back to the origin zone and then all trips
// @Tags trips
// @Produce json
// @Param from query int true "Pickup zone id"
// @Param to query int true "Drop-off zone id"
// @Success 200 {object} model.Prediction
// @Failure 400 {string} string "Missing or invalid zones"
// @Failure 500 {string} string "Internal server error"
// @Router /trips/predict [get]
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	from, okFrom := utils.ParseIntInRange(r.URL.Query().Get("from"), 0, math.MaxInt32)
	to, okTo := utils.ParseIntInRange(r.URL.Query().Get("to"), 0, math.MaxInt32)
	if !okFrom || !okTo {
		http.Error(w, "from and to must be zone ids", http.StatusBadRequest)
		return
	}

	p, err := h.Trips.Predict(r.Context(), from, to)
	if err != nil {
		serverError(w, "Failed to predict trip", err)
		return
	}
	writeJSON(w, p)
}

// GetHourly counts trips by pickup hour
// @Summary Trips per hour
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {array} model.HourCount
// @Failure 400 {string} string "Invalid filter"
// @Router /trips/hourly [get]
func (h *Handler) GetHourly(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to count hourly trips", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.Hourly(r.Context(), f)
	})
}

// GetZones maps pickup zone ids to trip counts
// @Summary Trips per pickup zone
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {object} map[string]int
// @Failure 400 {string} string "Invalid filter"
// @Router /trips/zones [get]
func (h *Handler) GetZones(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to count zone trips", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		zones, err := h.Trips.Zones(r.Context(), f)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int64, len(zones))
		for _, z := range zones {
			out[strconv.Itoa(z.ZoneID)] = z.Count
		}
		return out, nil
	})
}

// GetHistogram buckets trip totals in $10 ranges
// @Summary Price histogram
// @Description Trip counts per $10 total_amount bucket between $0 and $100
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {array} model.PriceBucket
// @Failure 400 {string} string "Invalid filter"
// @Router /trips/histogram [get]
func (h *Handler) GetHistogram(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to build price histogram", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.Histogram(r.Context(), f)
	})
}

// GetTopZones returns the five busiest pickup zones
// @Summary Top pickup zones
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {array} model.ZoneCount
// @Failure 400 {string} string "Invalid filter"
// @Router /trips/top-zones [get]
func (h *Handler) GetTopZones(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to rank zones", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.TopZones(r.Context(), f)
	})
}

// GetAlert returns the busiest weekday/hour slot
// @Summary Busiest slot
// @Description Day of week (0 = Sunday) and hour with the most pickups, or null without trips
// @Tags trips
// @Produce json
// @Param day query string false "all, weekday, weekend or 0-6"
// @Param time query string false "all, morning, afternoon or night"
// @Param month query string false "all or 1-12"
// @Success 200 {object} model.BusiestSlot
// @Failure 400 {string} string "Invalid filter"
// @Router /trips/alert [get]
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	h.filtered(w, r, "Failed to find busiest slot", func(r *http.Request, f model.TripFilter) (interface{}, error) {
		return h.Trips.Alert(r.Context(), f)
	})
}
