// Package baseline compares a run against a previously saved JSON report.
package baseline

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/torosent/zerobench/internal/stats"
)

// ErrInvalidReport is returned when the baseline file is not a JSON report.
var ErrInvalidReport = errors.New("baseline is not a valid JSON report")

// Delta is the change of one summary field relative to the baseline.
type Delta struct {
	Strategy string  `json:"strategy" yaml:"strategy"`
	Field    string  `json:"field" yaml:"field"`
	Baseline uint64  `json:"baseline_ns" yaml:"baseline_ns"`
	Current  uint64  `json:"current_ns" yaml:"current_ns"`
	Change   int64   `json:"change_ns" yaml:"change_ns"`
	Percent  float64 `json:"change_pct" yaml:"change_pct"`
}

// Baseline is a parsed previous report.
type Baseline struct {
	RunID   string
	Reducer string
	raw     []byte
}

// Load reads a baseline report from path.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", path, err)
	}
	return b, nil
}

// Parse wraps report JSON produced by a previous run.
func Parse(data []byte) (*Baseline, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidReport
	}
	if !gjson.GetBytes(data, "strategies").IsArray() {
		return nil, fmt.Errorf("%w: missing strategies", ErrInvalidReport)
	}
	return &Baseline{
		RunID:   gjson.GetBytes(data, "run_id").String(),
		Reducer: gjson.GetBytes(data, "reducer").String(),
		raw:     data,
	}, nil
}

// Value returns a strategy's field from the baseline.
func (b *Baseline) Value(strategy, field string) (uint64, bool) {
	path := fmt.Sprintf(`strategies.#(name==%q).summary.fields.#(name==%q).value`, strategy, field)
	res := gjson.GetBytes(b.raw, path)
	if !res.Exists() {
		return 0, false
	}
	return res.Uint(), true
}

// Compare returns a delta for every field present in both runs, in the
// current run's strategy and field order.
func (b *Baseline) Compare(current []stats.Named) []Delta {
	if b == nil {
		return nil
	}
	var deltas []Delta
	for _, named := range current {
		for _, f := range named.Summary.Fields {
			prev, ok := b.Value(named.Strategy, f.Name)
			if !ok {
				continue
			}
			d := Delta{
				Strategy: named.Strategy,
				Field:    f.Name,
				Baseline: prev,
				Current:  f.Value,
				Change:   int64(f.Value) - int64(prev),
			}
			if prev > 0 {
				d.Percent = float64(d.Change) / float64(prev) * 100
			}
			deltas = append(deltas, d)
		}
	}
	return deltas
}
