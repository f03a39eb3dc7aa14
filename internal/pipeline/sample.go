package pipeline

import (
	"math/rand"

	"nyc-trip-loader/internal/model"
)

// Reservoir keeps a uniform random sample of at most Cap trips from a stream
// of unknown length. The same seed over the same stream keeps the same rows.
type Reservoir struct {
	Cap   int
	seen  int64
	items []model.TripRecord
	rng   *rand.Rand
}

func NewReservoir(capacity int, seed int64) *Reservoir {
	return &Reservoir{
		Cap: capacity,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Offer considers one trip for the sample.
func (r *Reservoir) Offer(t model.TripRecord) {
	r.seen++
	if len(r.items) < r.Cap {
		r.items = append(r.items, t)
		return
	}
	if j := r.rng.Int63n(r.seen); j < int64(r.Cap) {
		r.items[j] = t
	}
}

// Seen is the number of trips offered so far.
func (r *Reservoir) Seen() int64 { return r.seen }

// Complete reports whether every offered trip was kept.
func (r *Reservoir) Complete() bool { return r.seen <= int64(r.Cap) }

// Trips returns the sample.
func (r *Reservoir) Trips() []model.TripRecord { return r.items }
