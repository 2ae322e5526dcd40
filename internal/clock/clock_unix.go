//go:build linux || darwin || freebsd

package clock

import "golang.org/x/sys/unix"

type monotonicSource struct{}

func newPlatformSource() Source {
	return monotonicSource{}
}

func (monotonicSource) Now() Timestamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic("clock: CLOCK_MONOTONIC unavailable: " + err.Error())
	}
	return Timestamp(ts.Nano())
}
