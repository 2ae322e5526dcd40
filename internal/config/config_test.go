package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/zerobench/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{"0", "40", "input.bin"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Benchmark != 0 || !cfg.SelectsAll() {
		t.Errorf("Benchmark = %d, want 0 selecting all", cfg.Benchmark)
	}
	if cfg.Reducer != config.ReducerQuartile {
		t.Errorf("Reducer = %q, want quartile", cfg.Reducer)
	}
	if cfg.Release != config.ReleaseBefore {
		t.Errorf("Release = %q, want before", cfg.Release)
	}
	if cfg.Allocator != config.AllocatorHeap {
		t.Errorf("Allocator = %q, want heap", cfg.Allocator)
	}
	if cfg.Output != config.OutputText {
		t.Errorf("Output = %q, want text", cfg.Output)
	}
	if cfg.ExactLength {
		t.Errorf("ExactLength = true, want false")
	}
	if cfg.TrialRate != 0 {
		t.Errorf("TrialRate = %d, want 0", cfg.TrialRate)
	}
	if cfg.Tracing.Enabled() {
		t.Errorf("Tracing enabled without endpoint")
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Tracing.SampleRate = %v, want 1.0", cfg.Tracing.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"benchmark": 3,
		"trials": 100,
		"file": "/tmp/sample.bin",
		"reducer": "histogram",
		"allocator": "mmap",
		"trialRate": 50,
		"output": "json",
		"thresholds": ["calloc:p99 < 20000"],
		"lockFile": "/tmp/zerobench.lock",
		"lockTimeout": "2s"
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--reducer", "mean"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Benchmark != 3 {
		t.Errorf("Benchmark = %d, want 3", cfg.Benchmark)
	}
	if cfg.Trials != 100 {
		t.Errorf("Trials = %d, want 100", cfg.Trials)
	}
	if cfg.File != "/tmp/sample.bin" {
		t.Errorf("File = %q, want /tmp/sample.bin", cfg.File)
	}
	if cfg.Reducer != config.ReducerMean {
		t.Errorf("Reducer = %q, want mean (flag overrides file)", cfg.Reducer)
	}
	if cfg.Allocator != config.AllocatorMmap {
		t.Errorf("Allocator = %q, want mmap", cfg.Allocator)
	}
	if cfg.TrialRate != 50 {
		t.Errorf("TrialRate = %d, want 50", cfg.TrialRate)
	}
	if cfg.Output != config.OutputJSON {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if len(cfg.Thresholds) != 1 {
		t.Errorf("Thresholds len = %d, want 1", len(cfg.Thresholds))
	}
	if cfg.LockTimeout != 2*time.Second {
		t.Errorf("LockTimeout = %s, want 2s", cfg.LockTimeout)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"trials: 8",
		"file: from-config.bin",
		"release: after",
		"progress: true",
		"tracing:",
		"  endpoint: collector:4317",
		"  insecure: true",
		"  service_name: bench-ci",
		"  sample_rate: 0.25",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	// Positionals override the file.
	cfg, err := loader.Load([]string{"--config", path, "2", "12", "positional.bin"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Benchmark != 2 {
		t.Errorf("Benchmark = %d, want 2", cfg.Benchmark)
	}
	if cfg.Trials != 12 {
		t.Errorf("Trials = %d, want 12", cfg.Trials)
	}
	if cfg.File != "positional.bin" {
		t.Errorf("File = %q, want positional.bin", cfg.File)
	}
	if cfg.Release != config.ReleaseAfter {
		t.Errorf("Release = %q, want after", cfg.Release)
	}
	if !cfg.Progress {
		t.Errorf("Progress = false, want true")
	}
	if !cfg.Tracing.Enabled() || !cfg.Tracing.Insecure {
		t.Errorf("Tracing = %+v, want enabled and insecure", cfg.Tracing)
	}
	if cfg.Tracing.Protocol != "grpc" {
		t.Errorf("Tracing.Protocol = %q, want grpc default", cfg.Tracing.Protocol)
	}
	if cfg.Tracing.ServiceName != "bench-ci" {
		t.Errorf("Tracing.ServiceName = %q, want bench-ci", cfg.Tracing.ServiceName)
	}
	if cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing.SampleRate = %v, want 0.25", cfg.Tracing.SampleRate)
	}
}

func TestSelectsAll(t *testing.T) {
	tests := []struct {
		benchmark int
		want      bool
	}{
		{0, true},
		{1, false},
		{2, false},
		{3, false},
		{4, true},
		{-1, true},
	}
	for _, tt := range tests {
		cfg := config.Config{Benchmark: tt.benchmark}
		if got := cfg.SelectsAll(); got != tt.want {
			t.Errorf("SelectsAll() with benchmark %d = %v, want %v", tt.benchmark, got, tt.want)
		}
	}
}

func TestConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		have config.Config
		want []string
	}{
		{
			name: "missing file and trials",
			have: config.Config{},
			want: []string{"file", "trial_count"},
		},
		{
			name: "unknown names",
			have: config.Config{
				File:      "a.bin",
				Trials:    4,
				Reducer:   "median",
				Release:   "during",
				Allocator: "stack",
				Output:    "xml",
			},
			want: []string{"reducer", "release", "allocator", "output"},
		},
		{
			name: "negative values",
			have: config.Config{
				File:        "a.bin",
				Trials:      -4,
				TrialRate:   -1,
				LockTimeout: -time.Second,
			},
			want: []string{"trial_count", "trial_rate", "lock_timeout"},
		},
		{
			name: "lock timeout without lock file",
			have: config.Config{
				File:        "a.bin",
				Trials:      4,
				LockTimeout: time.Second,
			},
			want: []string{"lock_file"},
		},
		{
			name: "tracing",
			have: config.Config{
				File:    "a.bin",
				Trials:  4,
				Tracing: config.TracingConfig{Protocol: "zipkin", SampleRate: 2},
			},
			want: []string{"tracing.protocol", "tracing.sample_rate"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.have.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestValidationErrorIssues(t *testing.T) {
	err := config.Config{}.Validate()
	verr, ok := err.(config.ValidationError)
	if !ok {
		t.Fatalf("Validate() error type = %T, want ValidationError", err)
	}
	if len(verr.Issues()) != 2 {
		t.Errorf("Issues() = %v, want 2 entries", verr.Issues())
	}
}
