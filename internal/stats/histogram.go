package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram reports percentiles from an HDR histogram.
type Histogram struct {
	lowest  int64
	highest int64
	sigfigs int
}

// NewHistogram tracks 1ns to 60s with 3 significant figures.
func NewHistogram() Histogram {
	return Histogram{lowest: 1, highest: int64(60 * time.Second), sigfigs: 3}
}

func (Histogram) Policy() Policy { return PolicyHistogram }

func (h Histogram) Reduce(samples []uint64) Summary {
	sum := Summary{Policy: PolicyHistogram, Samples: len(samples)}
	if len(samples) == 0 {
		return sum
	}

	hist := hdrhistogram.New(h.lowest, h.highest, h.sigfigs)
	minVal, maxVal := samples[0], samples[0]
	for _, s := range samples {
		if s < minVal {
			minVal = s
		}
		if s > maxVal {
			maxVal = s
		}
		v := int64(min(s, uint64(hist.HighestTrackableValue())))
		if v < hist.LowestTrackableValue() {
			v = hist.LowestTrackableValue()
		}
		_ = hist.RecordValue(v)
	}

	sum.Fields = []Field{
		{"min", minVal},
		{"p50", clamp(hist.ValueAtQuantile(50), minVal, maxVal)},
		{"p90", clamp(hist.ValueAtQuantile(90), minVal, maxVal)},
		{"p99", clamp(hist.ValueAtQuantile(99), minVal, maxVal)},
		{"max", maxVal},
	}
	sum.StdDev = stdDev(samples)
	return sum
}

// clamp keeps bucket-rounded percentiles inside the observed range.
func clamp(v int64, lo, hi uint64) uint64 {
	u := uint64(max(v, 0))
	if u < lo {
		return lo
	}
	if u > hi {
		return hi
	}
	return u
}
