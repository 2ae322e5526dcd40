package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const usageLine = "zerobench [flags] <benchmark:0-3> <trial_count> <file_path>"

const benchmarkHelp = `Available benchmarks:

	0	All benchmarks are executed
	1	No initialization
	2	Initialization with memset
	3	Initialization with calloc
`

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           usageLine,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	if out == nil {
		out = os.Stdout
	}
	cmd.SetOut(out)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Measurement flags
	flags.String("reducer", ReducerQuartile, "Statistics reducer: 'quartile', 'mean', or 'histogram'")
	flags.String("release", ReleaseBefore, "Release buffers 'before' or 'after' the end timestamp")
	flags.String("allocator", AllocatorHeap, "Memory source: 'heap' or 'mmap'")
	flags.Bool("exact-length", false, "Read the exact file size instead of size+1")
	flags.IntP("trial-rate", "r", 0, "Trials per second limit (0 means unlimited)")

	// Output flags
	flags.StringP("output", "o", string(OutputText), "Output format: 'text', 'json', or 'yaml'")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.Bool("progress", false, "Print trial progress to stderr")
	flags.String("log-level", "warn", "Log level: debug, info, warn, or error")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Pass/fail thresholds (repeatable, e.g., 'memset:median < 5000')")
	flags.String("baseline", "", "Path to a previous JSON report to compare against")

	// Run lock flags
	flags.String("lock-file", "", "Hold an exclusive lock on this file while benchmarking")
	flags.Duration("lock-timeout", 0, "How long to wait for the lock (0 tries once)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (e.g., localhost:4317)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("tracing-service-name", "", "Service name reported on spans")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of spans to sample (0.0-1.0)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command, out io.Writer) {
	if out == nil {
		out = cmd.OutOrStdout()
	}
	fmt.Fprintf(out, "Usage: %s\n\n", cmd.UseLine())
	fmt.Fprint(out, benchmarkHelp)
	fmt.Fprint(out, "\nFlags:\n")
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("reducer") {
		val, err := fs.GetString("reducer")
		if err != nil {
			return err
		}
		cfg.Reducer = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("release") {
		val, err := fs.GetString("release")
		if err != nil {
			return err
		}
		cfg.Release = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("allocator") {
		val, err := fs.GetString("allocator")
		if err != nil {
			return err
		}
		cfg.Allocator = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("exact-length") {
		val, err := fs.GetBool("exact-length")
		if err != nil {
			return err
		}
		cfg.ExactLength = val
	}
	if fs.Changed("trial-rate") {
		val, err := fs.GetInt("trial-rate")
		if err != nil {
			return err
		}
		cfg.TrialRate = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("html-output") {
		val, err := fs.GetString("html-output")
		if err != nil {
			return err
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}
	if fs.Changed("threshold") {
		vals, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = vals
	}
	if fs.Changed("baseline") {
		val, err := fs.GetString("baseline")
		if err != nil {
			return err
		}
		cfg.Baseline = strings.TrimSpace(val)
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = strings.TrimSpace(val)
	}
	if fs.Changed("lock-timeout") {
		val, err := fs.GetDuration("lock-timeout")
		if err != nil {
			return err
		}
		cfg.LockTimeout = val
	}
	return applyTracingFlagOverrides(&cfg.Tracing, fs)
}

func applyTracingFlagOverrides(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(val)
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	return nil
}
