package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/zerobench/internal/alloc"
	"github.com/torosent/zerobench/internal/baseline"
	"github.com/torosent/zerobench/internal/bench"
	"github.com/torosent/zerobench/internal/config"
	"github.com/torosent/zerobench/internal/logging"
	"github.com/torosent/zerobench/internal/output"
	"github.com/torosent/zerobench/internal/runlock"
	"github.com/torosent/zerobench/internal/stats"
	"github.com/torosent/zerobench/internal/strategy"
	"github.com/torosent/zerobench/internal/threshold"
	"github.com/torosent/zerobench/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// errThresholdsFailed is returned after all results were printed.
var errThresholdsFailed = errors.New("one or more thresholds failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, config.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	loader.SetOutput(stdout, stderr)
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, level)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	reducer, err := stats.New(stats.Policy(cfg.Reducer))
	if err != nil {
		return err
	}
	release, err := bench.ParseReleasePolicy(cfg.Release)
	if err != nil {
		return err
	}
	allocator, err := alloc.New(alloc.Kind(cfg.Allocator))
	if err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}
	var base *baseline.Baseline
	if cfg.Baseline != "" {
		if base, err = baseline.Load(cfg.Baseline); err != nil {
			return err
		}
		if base.Reducer != "" && base.Reducer != string(reducer.Policy()) {
			logger.Warn("baseline reducer differs, only shared fields are compared",
				slog.String("baseline", base.Reducer),
				slog.String("current", string(reducer.Policy())))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lock, err := runlock.Acquire(ctx, cfg.LockFile, cfg.LockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release lock", slog.String("path", lock.Path()), slog.Any("error", err))
		}
	}()

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	f, err := os.Open(cfg.File)
	if err != nil {
		return err
	}
	defer f.Close()

	length, err := readLength(f, cfg.ExactLength)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.File, err)
	}
	logger.Debug("file under test",
		slog.String("path", cfg.File),
		slog.Int("length", length),
		slog.Bool("exact", cfg.ExactLength),
	)

	trials := cfg.Trials
	if reducer.Policy() == stats.PolicyQuartile {
		trials = stats.RoundTrials(trials)
		if trials != cfg.Trials {
			logger.Debug("trial count rounded to a multiple of four",
				slog.Int("requested", cfg.Trials), slog.Int("trials", trials))
		}
	}

	selected := strategy.Select(cfg.Benchmark)
	collector := bench.NewCollector(bench.Options{
		Allocator:    allocator,
		Release:      release,
		TrialsPerSec: cfg.TrialRate,
		Logger:       logger,
		ExactLength:  cfg.ExactLength,
	})

	if cfg.Progress {
		progress := output.NewProgressReporter(collector.Completed, int64(trials*len(selected)), progressInterval, stderr)
		progress.Start()
		defer progress.Stop()
	}

	runs := make([]output.Run, 0, len(selected))
	for _, s := range selected {
		if !tp.Enabled() {
			res, err := collector.Collect(ctx, s, trials, f, length)
			if err != nil {
				return err
			}
			runs = append(runs, output.Run{Result: res, Summary: reducer.Reduce(res.Samples)})
			continue
		}
		spanCtx, span := tracing.StartStrategySpan(ctx, tp.Tracer(), s.Name, trials, length)
		res, err := collector.Collect(spanCtx, s, trials, f, length)
		if err != nil {
			tracing.EndSpan(span, err)
			return err
		}
		sum := reducer.Reduce(res.Samples)
		tracing.EndSpan(span, nil, tracing.SummaryAttributes(sum)...)
		runs = append(runs, output.Run{Result: res, Summary: sum})
	}

	report := output.NewReport(output.Meta{
		File:      cfg.File,
		Bytes:     length,
		Trials:    trials,
		Reducer:   string(reducer.Policy()),
		Release:   string(release),
		Allocator: allocator.Name(),
	}, runs)

	results := threshold.NewEvaluator(thresholds).Evaluate(report.Summaries())
	report.SetThresholds(results)
	if base != nil {
		report.SetBaseline(base.RunID, base.Compare(report.Summaries()))
	}

	if err := writeReport(stdout, cfg.Output, report); err != nil {
		return err
	}
	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg.HTMLOutput, report); err != nil {
			return err
		}
		logger.Info("html report written", slog.String("path", cfg.HTMLOutput))
	}

	if !threshold.Passed(results) {
		return errThresholdsFailed
	}
	return nil
}

// readLength returns the number of bytes each trial requests. Unless exact is
// set it is one past the file size, so every trial's read comes up short.
func readLength(f io.Seeker, exact bool) (int, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if exact {
		return int(size), nil
	}
	return int(size) + 1, nil
}

func writeReport(w io.Writer, format config.OutputFormat, report *output.Report) error {
	switch format {
	case config.OutputJSON:
		return output.PrintJSONReport(w, report)
	case config.OutputYAML:
		return output.PrintYAMLReport(w, report)
	default:
		output.PrintReport(w, report)
		output.PrintDetails(w, report)
		return nil
	}
}

func writeHTMLReport(path string, report *output.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HTML report file: %w", err)
	}
	if err := output.GenerateHTMLReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
