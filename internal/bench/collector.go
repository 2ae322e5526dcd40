package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/zerobench/internal/clock"
	"github.com/torosent/zerobench/internal/strategy"
)

// ErrNoTrials is returned when Collect is asked for fewer than one trial.
var ErrNoTrials = errors.New("trial count must be > 0")

// Result captures one strategy's measurement.
type Result struct {
	Strategy   strategy.Strategy
	Samples    []uint64 // per-trial nanoseconds in execution order
	ShortReads int
	Duration   time.Duration
}

// Collector times strategies trial by trial.
type Collector struct {
	opt       Options
	limiter   *rate.Limiter
	completed atomic.Int64
}

func NewCollector(opt Options) *Collector {
	opt.normalize()
	return &Collector{opt: opt, limiter: opt.LimiterFactory(opt.TrialsPerSec)}
}

// Completed returns the number of trials finished across all Collect calls.
func (c *Collector) Completed() int64 {
	return c.completed.Load()
}

// Collect runs s trials times against f, reading bytes bytes each time.
// The file offset is left wherever the last trial put it.
func (c *Collector) Collect(ctx context.Context, s strategy.Strategy, trials int, f io.ReadSeeker, bytes int) (Result, error) {
	if trials <= 0 {
		return Result{}, ErrNoTrials
	}
	if s.Run == nil {
		return Result{}, fmt.Errorf("strategy %q has no implementation", s.Name)
	}

	log := c.opt.Logger.With(slog.String("strategy", s.Name))
	res := Result{Strategy: s, Samples: make([]uint64, 0, trials)}
	clk := c.opt.Clock
	runStart := clk.Now()

	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Result{}, err
			}
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Result{}, fmt.Errorf("%s: rewind: %w", s.Name, err)
		}

		start := clk.Now()
		buf, err := s.Run(f, bytes, c.opt.Allocator)
		if err != nil {
			return Result{}, fmt.Errorf("%s: trial %d: %w", s.Name, i, err)
		}
		var relErr error
		if c.opt.Release == ReleaseBeforeStop {
			relErr = buf.Release()
		}
		end := clk.Now()
		if c.opt.Release == ReleaseAfterStop {
			relErr = buf.Release()
		}
		if relErr != nil {
			return Result{}, fmt.Errorf("%s: trial %d: release: %w", s.Name, i, relErr)
		}

		res.Samples = append(res.Samples, clock.Elapsed(start, end))
		if buf.Short() {
			if res.ShortReads == 0 {
				level := slog.LevelWarn
				if !c.opt.ExactLength && buf.Requested-buf.Read == 1 {
					level = slog.LevelDebug
				}
				log.LogAttrs(ctx, level, "short read", slog.Int("requested", buf.Requested), slog.Int("read", buf.Read))
			}
			res.ShortReads++
		}
		c.completed.Add(1)
	}

	res.Duration = time.Duration(clock.Elapsed(runStart, clk.Now()))
	log.Debug("strategy complete",
		slog.Int("trials", trials),
		slog.Int("short_reads", res.ShortReads),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
