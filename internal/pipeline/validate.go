package pipeline

import "nyc-trip-loader/internal/model"

// Qualifies reports whether a trip survives cleaning: both location ids are
// present and distance and fare are strictly positive. Missing distance or
// fare never qualifies.
func Qualifies(t *model.TripRecord) bool {
	if t == nil || t.PULocationID == nil || t.DOLocationID == nil {
		return false
	}
	if t.TripDistance == nil || !(*t.TripDistance > 0) {
		return false
	}
	if t.FareAmount == nil || !(*t.FareAmount > 0) {
		return false
	}
	return true
}
