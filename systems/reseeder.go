package systems

import (
	"math/rand"

	"github.com/pthm-cable/treegro/config"
)

// Reseed is a batch of seeds blown in from outside the world.
type Reseed struct {
	X, Y  int
	Count uint32
}

// Reseeder supplies a batch of outside seeds to one random cell every
// interval ticks, keeping an otherwise extinct world populated.
type Reseeder struct {
	rng      *rand.Rand
	w, h     int
	interval int32
	count    uint32
}

// NewReseeder creates a reseeder for a w x h grid.
func NewReseeder(w, h int, seed int64, cfg *config.Config) *Reseeder {
	return &Reseeder{
		rng:      rand.New(rand.NewSource(seed)),
		w:        w,
		h:        h,
		interval: int32(cfg.Seeding.ReseedInterval),
		count:    cfg.Seeding.ReseedCount,
	}
}

// Due returns the batch for the given tick, if any. Ticks start at 1; a zero
// interval or count disables reseeding.
func (r *Reseeder) Due(tick int32) (Reseed, bool) {
	if r.interval <= 0 || r.count == 0 || tick <= 0 || tick%r.interval != 0 {
		return Reseed{}, false
	}
	return Reseed{
		X:     r.rng.Intn(r.w),
		Y:     r.rng.Intn(r.h),
		Count: r.count,
	}, true
}
