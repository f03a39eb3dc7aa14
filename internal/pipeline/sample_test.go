package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/pkg/utils"
)

func sampled(trips []model.TripRecord, capacity int, seed int64) []int32 {
	r := NewReservoir(capacity, seed)
	for _, t := range trips {
		r.Offer(t)
	}
	ids := make([]int32, 0, len(r.Trips()))
	for _, t := range r.Trips() {
		ids = append(ids, *t.PULocationID)
	}
	return ids
}

func numbered(n int) []model.TripRecord {
	trips := make([]model.TripRecord, n)
	for i := range trips {
		trips[i] = model.TripRecord{PULocationID: utils.Int32Ptr(int32(i))}
	}
	return trips
}

func TestReservoirKeepsExactlyCap(t *testing.T) {
	r := NewReservoir(200, 42)
	for _, trip := range monthTrips(time.January, 300, 0) {
		r.Offer(trip)
	}
	assert.Len(t, r.Trips(), 200)
	assert.Equal(t, int64(300), r.Seen())
	assert.False(t, r.Complete())
}

func TestReservoirKeepsEverythingUnderCap(t *testing.T) {
	trips := numbered(50)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, sampled(trips[:5], 200, 42))

	r := NewReservoir(50, 42)
	for _, trip := range trips {
		r.Offer(trip)
	}
	assert.True(t, r.Complete(), "exactly cap rows is the full set")
	assert.Len(t, r.Trips(), 50)
}

func TestReservoirIsDeterministic(t *testing.T) {
	trips := numbered(1000)
	first := sampled(trips, 10, 42)
	assert.Equal(t, first, sampled(trips, 10, 42))
	assert.NotEqual(t, first, sampled(trips, 10, 43))
}

func TestReservoirSampleHasNoDuplicates(t *testing.T) {
	seen := map[int32]bool{}
	for _, id := range sampled(numbered(5000), 100, 7) {
		assert.False(t, seen[id], "row %d sampled twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}
