// Package stats reduces benchmark samples to summaries.
//
// Three policies are available:
//   - [PolicyQuartile]: exact five-number summary (min, q1, median, q3, max)
//     over a sample count that is a multiple of four.
//   - [PolicyMean]: truncated integer mean, reported as ns/op.
//   - [PolicyHistogram]: min, p50, p90, p99, max from an HDR histogram.
//
// Every summary also carries the population standard deviation, which only the
// structured report formats print.
package stats

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// Policy names a reduction policy.
type Policy string

const (
	PolicyQuartile  Policy = "quartile"
	PolicyMean      Policy = "mean"
	PolicyHistogram Policy = "histogram"
)

// Field is one named value of a summary, in nanoseconds.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value uint64 `json:"value" yaml:"value"`
}

// Summary is the reduced form of a sample sequence.
type Summary struct {
	Policy  Policy  `json:"policy" yaml:"policy"`
	Samples int     `json:"samples" yaml:"samples"`
	Fields  []Field `json:"fields" yaml:"fields"`
	Unit    string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	StdDev  float64 `json:"stddev_ns" yaml:"stddev_ns"`
}

// Get returns the value of the named field.
func (s Summary) Get(name string) (uint64, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Names lists the field names in output order.
func (s Summary) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Named pairs a strategy name with its summary.
type Named struct {
	Strategy string
	Summary  Summary
}

// Reducer turns a sample sequence into a Summary. Implementations must not
// modify the input slice.
type Reducer interface {
	Policy() Policy
	Reduce(samples []uint64) Summary
}

// New returns the reducer for policy.
func New(policy Policy) (Reducer, error) {
	switch Policy(strings.ToLower(string(policy))) {
	case "", PolicyQuartile:
		return Quartile{}, nil
	case PolicyMean:
		return Mean{}, nil
	case PolicyHistogram:
		return NewHistogram(), nil
	default:
		return nil, fmt.Errorf("unknown reducer %q", policy)
	}
}

// FieldNames lists the fields a policy produces.
func FieldNames(policy Policy) []string {
	switch policy {
	case PolicyMean:
		return []string{"mean"}
	case PolicyHistogram:
		return []string{"min", "p50", "p90", "p99", "max"}
	default:
		return []string{"min", "q1", "median", "q3", "max"}
	}
}

func stdDev(samples []uint64) float64 {
	if len(samples) < 2 {
		return 0
	}
	data := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		data[i] = float64(s)
	}
	sd, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return 0
	}
	return sd
}
