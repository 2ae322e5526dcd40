//go:build !(linux || darwin || freebsd)

package clock

import "time"

var epoch = time.Now()

// newPlatformSource falls back to the runtime's monotonic reading, exposed as
// a 1ns tick counter.
func newPlatformSource() Source {
	return &TickSource{
		Ticks: func() uint64 { return uint64(time.Since(epoch)) },
		Timebase: func() (uint64, uint64) {
			return 1, 1
		},
	}
}
