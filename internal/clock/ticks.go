package clock

import (
	"math/bits"
	"sync"
)

// TickSource converts a raw tick counter into nanoseconds.
//
// The timebase ratio and the starting tick are captured lazily on the first
// call to Now and then reused for the life of the process.
type TickSource struct {
	// Ticks reads the hardware counter.
	Ticks func() uint64
	// Timebase reports how many nanoseconds numer/denom one tick represents.
	Timebase func() (numer, denom uint64)

	once  sync.Once
	numer uint64
	denom uint64
	start uint64
}

func (s *TickSource) calibrate() {
	s.numer, s.denom = 1, 1
	if s.Timebase != nil {
		if n, d := s.Timebase(); n > 0 && d > 0 {
			s.numer, s.denom = n, d
		}
	}
	s.start = s.Ticks()
}

// Now returns nanoseconds elapsed since the source was first read.
func (s *TickSource) Now() Timestamp {
	s.once.Do(s.calibrate)
	delta := s.Ticks() - s.start
	hi, lo := bits.Mul64(delta, s.numer)
	if hi >= s.denom {
		// quotient would overflow 64 bits; saturate
		return Timestamp(^uint64(0))
	}
	q, _ := bits.Div64(hi, lo, s.denom)
	return Timestamp(q)
}
