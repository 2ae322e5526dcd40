// Package output renders benchmark results as text, JSON, YAML and HTML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/torosent/zerobench/internal/baseline"
	"github.com/torosent/zerobench/internal/bench"
	"github.com/torosent/zerobench/internal/stats"
	"github.com/torosent/zerobench/internal/threshold"
)

// labelWidth is the column the strategy label is padded to in text output.
const labelWidth = 21

// Meta describes the run that produced a report.
type Meta struct {
	File      string
	Bytes     int
	Trials    int
	Reducer   string
	Release   string
	Allocator string
}

// Run pairs a collector result with its reduced summary.
type Run struct {
	Result  bench.Result
	Summary stats.Summary
}

// Report is the structured form of a benchmark run.
type Report struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	File        string            `json:"file" yaml:"file"`
	Bytes       int               `json:"bytes" yaml:"bytes"`
	Trials      int               `json:"trials" yaml:"trials"`
	Reducer     string            `json:"reducer" yaml:"reducer"`
	Release     string            `json:"release" yaml:"release"`
	Allocator   string            `json:"allocator" yaml:"allocator"`
	Strategies  []StrategyReport  `json:"strategies" yaml:"strategies"`
	Thresholds  *ThresholdSummary `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Baseline    *BaselineSummary  `json:"baseline,omitempty" yaml:"baseline,omitempty"`
}

// StrategyReport is one strategy's entry in a Report.
type StrategyReport struct {
	Name       string        `json:"name" yaml:"name"`
	Label      string        `json:"label" yaml:"label"`
	ShortReads int           `json:"short_reads" yaml:"short_reads"`
	DurationMs float64       `json:"duration_ms" yaml:"duration_ms"`
	Summary    stats.Summary `json:"summary" yaml:"summary"`
}

// ThresholdSummary provides aggregate threshold results.
type ThresholdSummary struct {
	Total   int                   `json:"total" yaml:"total"`
	Passed  int                   `json:"passed" yaml:"passed"`
	Failed  int                   `json:"failed" yaml:"failed"`
	Results []ThresholdResultJSON `json:"results" yaml:"results"`
}

// ThresholdResultJSON is a serializable threshold result.
type ThresholdResultJSON struct {
	Threshold string  `json:"threshold" yaml:"threshold"`
	Strategy  string  `json:"strategy" yaml:"strategy"`
	Field     string  `json:"field" yaml:"field"`
	Operator  string  `json:"operator" yaml:"operator"`
	Expected  float64 `json:"expected" yaml:"expected"`
	Actual    float64 `json:"actual" yaml:"actual"`
	Pass      bool    `json:"pass" yaml:"pass"`
	Message   string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// BaselineSummary holds the comparison against a previous report.
type BaselineSummary struct {
	RunID  string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Deltas []baseline.Delta `json:"deltas" yaml:"deltas"`
}

// NewReport assembles a report with a fresh run id.
func NewReport(meta Meta, runs []Run) *Report {
	r := &Report{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		File:        meta.File,
		Bytes:       meta.Bytes,
		Trials:      meta.Trials,
		Reducer:     meta.Reducer,
		Release:     meta.Release,
		Allocator:   meta.Allocator,
		Strategies:  make([]StrategyReport, 0, len(runs)),
	}
	for _, run := range runs {
		r.Strategies = append(r.Strategies, StrategyReport{
			Name:       run.Result.Strategy.Name,
			Label:      run.Result.Strategy.Label,
			ShortReads: run.Result.ShortReads,
			DurationMs: float64(run.Result.Duration) / float64(time.Millisecond),
			Summary:    run.Summary,
		})
	}
	return r
}

// Summaries returns the per-strategy summaries in execution order.
func (r *Report) Summaries() []stats.Named {
	out := make([]stats.Named, len(r.Strategies))
	for i, s := range r.Strategies {
		out[i] = stats.Named{Strategy: s.Name, Summary: s.Summary}
	}
	return out
}

// SetThresholds attaches threshold results.
func (r *Report) SetThresholds(results []threshold.Result) {
	if len(results) == 0 {
		r.Thresholds = nil
		return
	}
	ts := &ThresholdSummary{
		Total:   len(results),
		Results: make([]ThresholdResultJSON, len(results)),
	}
	for i, tr := range results {
		ts.Results[i] = ThresholdResultJSON{
			Threshold: tr.Threshold.Raw,
			Strategy:  tr.Strategy,
			Field:     tr.Threshold.Field,
			Operator:  tr.Threshold.Operator,
			Expected:  tr.Threshold.Value,
			Actual:    tr.Actual,
			Pass:      tr.Pass,
			Message:   tr.Message,
		}
		if tr.Pass {
			ts.Passed++
		} else {
			ts.Failed++
		}
	}
	r.Thresholds = ts
}

// SetBaseline attaches baseline deltas.
func (r *Report) SetBaseline(runID string, deltas []baseline.Delta) {
	r.Baseline = &BaselineSummary{RunID: runID, Deltas: deltas}
}

// PrintReport writes one line per strategy: the label padded to a fixed
// column followed by the summary fields in nanoseconds.
func PrintReport(w io.Writer, r *Report) {
	for _, s := range r.Strategies {
		fmt.Fprintln(w, formatLine(s.Label, s.Summary))
	}
}

// PrintDetails writes threshold and baseline sections after the result lines.
func PrintDetails(w io.Writer, r *Report) {
	if r.Thresholds != nil {
		fmt.Fprintf(w, "\nThresholds: %d passed, %d failed\n", r.Thresholds.Passed, r.Thresholds.Failed)
		for _, tr := range r.Thresholds.Results {
			fmt.Fprintf(w, "  %s\n", tr.Message)
		}
	}
	if r.Baseline != nil && len(r.Baseline.Deltas) > 0 {
		fmt.Fprintln(w, "\nBaseline comparison:")
		for _, d := range r.Baseline.Deltas {
			fmt.Fprintf(w, "  %-8s %-7s %d -> %d (%+d ns, %+.1f%%)\n",
				d.Strategy, d.Field, d.Baseline, d.Current, d.Change, d.Percent)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func formatLine(label string, sum stats.Summary) string {
	values := make([]string, len(sum.Fields))
	for i, f := range sum.Fields {
		values[i] = strconv.FormatUint(f.Value, 10)
	}
	line := fmt.Sprintf("%-*s %s", labelWidth, label, strings.Join(values, " "))
	if sum.Unit != "" {
		line += " " + sum.Unit
	}
	return line
}
