package model

// TripFilter narrows analytics queries. Zero values mean "all".
type TripFilter struct {
	Days      []int  // days of week, 0 = Sunday
	TimeOfDay string // morning, afternoon, night
	Month     int    // 1-12
}

// Time-of-day buckets accepted by TripFilter.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Night     = "night"
)

// KPIs are the headline aggregates of the loaded trips
type KPIs struct {
	AvgDistance  *float64 `json:"avg_distance"`
	AvgPrice     *float64 `json:"avg_price"`
	AvgTip       *float64 `json:"avg_tip"`
	PricePerMile *float64 `json:"price_per_mile"`
	AvgSpeed     *float64 `json:"avg_speed"`
	TotalTrips   int64    `json:"total_trips"`
}

// PeriodStats compares peak and off-peak hours
type PeriodStats struct {
	Period               string   `json:"period"`
	AvgDistance          *float64 `json:"avg_distance"`
	WeightedPricePerMile *float64 `json:"weighted_price_per_mile"`
}

// Prediction is a price/duration estimate between two zones
type Prediction struct {
	PredictedPrice *float64 `json:"predicted_price"`
	DurationMin    *float64 `json:"duration_min"`
	Samples        int64    `json:"samples"`
	Type           string   `json:"type"` // exact, origin_zone, global
}

// HourCount is the number of pickups in an hour of day
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// ZoneCount is the number of pickups in a zone
type ZoneCount struct {
	ZoneID int   `json:"zone_id"`
	Count  int64 `json:"count"`
}

// PriceBucket is a $10 total_amount range
type PriceBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// BusiestSlot is the day-of-week and hour with the most pickups
type BusiestSlot struct {
	DayNum     int   `json:"day_num"`
	HourNum    int   `json:"hour_num"`
	TotalTrips int64 `json:"total_trips"`
}
