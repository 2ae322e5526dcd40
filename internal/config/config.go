// Package config provides configuration loading and parsing for zerobench.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

const (
	ReducerQuartile  = "quartile"
	ReducerMean      = "mean"
	ReducerHistogram = "histogram"

	ReleaseBefore = "before"
	ReleaseAfter  = "after"

	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

// maxSelector is the highest benchmark selector that picks a single strategy.
const maxSelector = 3

type Config struct {
	Benchmark   int           `mapstructure:"benchmark"`
	Trials      int           `mapstructure:"trials"`
	File        string        `mapstructure:"file"`
	Reducer     string        `mapstructure:"reducer"`
	Release     string        `mapstructure:"release"`
	Allocator   string        `mapstructure:"allocator"`
	ExactLength bool          `mapstructure:"exact_length"`
	TrialRate   int           `mapstructure:"trial_rate"`
	Output      OutputFormat  `mapstructure:"output"`
	HTMLOutput  string        `mapstructure:"html_output"`
	Thresholds  []string      `mapstructure:"thresholds"`
	Baseline    string        `mapstructure:"baseline"`
	Progress    bool          `mapstructure:"progress"`
	LockFile    string        `mapstructure:"lock_file"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	Tracing     TracingConfig `mapstructure:"tracing"`
	ConfigFile  string        `mapstructure:"-"`
}

// TracingConfig controls OTLP span export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether an exporter endpoint was configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// SelectsAll reports whether the benchmark selector runs every strategy.
func (c Config) SelectsAll() bool {
	return c.Benchmark < 1 || c.Benchmark > maxSelector
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.File) == "" {
		issues = append(issues, "file is required (use --help for usage information)")
	}
	if c.Trials <= 0 {
		issues = append(issues, "trial_count must be greater than zero")
	}
	if c.Benchmark != 0 && c.SelectsAll() {
		slog.Warn("benchmark selector out of range, running all strategies", "benchmark", c.Benchmark)
	}

	switch strings.ToLower(c.Reducer) {
	case "", ReducerQuartile, ReducerMean, ReducerHistogram:
	default:
		issues = append(issues, fmt.Sprintf("reducer must be quartile, mean or histogram (got %q)", c.Reducer))
	}
	switch strings.ToLower(c.Release) {
	case "", ReleaseBefore, ReleaseAfter:
	default:
		issues = append(issues, fmt.Sprintf("release must be before or after (got %q)", c.Release))
	}
	switch strings.ToLower(c.Allocator) {
	case "", AllocatorHeap, AllocatorMmap:
	default:
		issues = append(issues, fmt.Sprintf("allocator must be heap or mmap (got %q)", c.Allocator))
	}
	switch OutputFormat(strings.ToLower(string(c.Output))) {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output must be text, json or yaml (got %q)", c.Output))
	}

	if c.TrialRate < 0 {
		issues = append(issues, "trial_rate must be non-negative")
	}
	if c.LockTimeout < 0 {
		issues = append(issues, "lock_timeout must be non-negative")
	}
	if c.LockTimeout > 0 && strings.TrimSpace(c.LockFile) == "" {
		issues = append(issues, "lock_timeout requires lock_file")
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing.protocol must be grpc or http (got %q)", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing.sample_rate must be between 0.0 and 1.0 (got %g)", t.SampleRate))
	}
	return issues
}
