// Package clock provides a monotonic nanosecond clock for timing benchmark trials.
//
// The clock is independent of wall-clock adjustments. On Linux, macOS and
// FreeBSD it reads CLOCK_MONOTONIC directly; elsewhere it derives nanoseconds
// from a tick counter and a timebase ratio computed once on first use.
package clock

// Timestamp is a reading of the monotonic clock in nanoseconds.
// Readings are only meaningful relative to one another.
type Timestamp uint64

// Source produces monotonic timestamps.
type Source interface {
	Now() Timestamp
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func() Timestamp

func (f SourceFunc) Now() Timestamp { return f() }

var platform = newPlatformSource()

// Default returns the platform clock source.
func Default() Source {
	return platform
}

// Now reads the platform clock.
func Now() Timestamp {
	return platform.Now()
}

// Elapsed returns end - start in nanoseconds. The result is undefined when
// end precedes start.
func Elapsed(start, end Timestamp) uint64 {
	return uint64(end - start)
}
