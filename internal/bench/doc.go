// Package bench runs buffer-initialization strategies repeatedly and records
// how long each trial takes.
//
// A [Collector] executes trials strictly one after another on the calling
// goroutine. Each trial rewinds the file under test, reads the monotonic
// clock, invokes the strategy and reads the clock again:
//
//	c := bench.NewCollector(bench.Options{Release: bench.ReleaseBeforeStop})
//	res, err := c.Collect(ctx, strategy.Memset, 400, f, size)
//
// # Release policy
//
// Each trial's buffer is released before the next trial begins. Whether the
// release happens inside the timed region is set by [ReleasePolicy]:
// [ReleaseBeforeStop] (the default) charges the release to the trial,
// [ReleaseAfterStop] leaves it out.
//
// # Pacing
//
// An optional rate limit spaces trials out. The wait happens before the
// start timestamp and is never measured.
package bench
