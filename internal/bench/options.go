package bench

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/torosent/zerobench/internal/alloc"
	"github.com/torosent/zerobench/internal/clock"
)

// ReleasePolicy places the buffer release relative to the end timestamp.
type ReleasePolicy string

const (
	ReleaseBeforeStop ReleasePolicy = "before"
	ReleaseAfterStop  ReleasePolicy = "after"
)

// ParseReleasePolicy accepts "before" or "after"; empty means before.
func ParseReleasePolicy(s string) (ReleasePolicy, error) {
	switch ReleasePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReleaseBeforeStop:
		return ReleaseBeforeStop, nil
	case ReleaseAfterStop:
		return ReleaseAfterStop, nil
	default:
		return "", fmt.Errorf("unknown release policy %q", s)
	}
}

// Options configure the Collector.
type Options struct {
	Clock          clock.Source                // timestamp source (default platform clock)
	Allocator      alloc.Allocator             // memory source (default heap)
	Release        ReleasePolicy               // when buffers are released (default before stop)
	TrialsPerSec   int                         // pacing between trials (0 means unlimited)
	LimiterFactory func(tps int) *rate.Limiter // optional injection for tests
	Logger         *slog.Logger
	// ExactLength is set when trials request exactly the file size. Otherwise
	// each trial asks for one byte past EOF and that one-byte shortfall is
	// expected.
	ExactLength bool
}

func (o *Options) normalize() {
	if o.Clock == nil {
		o.Clock = clock.Default()
	}
	if o.Allocator == nil {
		o.Allocator = alloc.Heap{}
	}
	if o.Release == "" {
		o.Release = ReleaseBeforeStop
	}
	if o.TrialsPerSec < 0 {
		o.TrialsPerSec = 0
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(tps int) *rate.Limiter {
			if tps <= 0 {
				return nil
			}
			return rate.NewLimiter(rate.Limit(tps), 1)
		}
	}
}
