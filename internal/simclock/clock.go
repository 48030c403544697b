// Package simclock provides the monotonic-seconds clock pages are stamped
// with, and the TTL/disk-latency arithmetic the cache manager compares
// stamps against.
package simclock

import "time"

// Clock produces seconds-since-epoch timestamps (as a float64, matching the
// source's `gettimeofday`-derived Timestamp). Source is overridable so
// tests can drive the clock deterministically instead of wall time.
type Clock struct {
	// Source returns the current time. Defaults to time.Now when the zero
	// value is used.
	Source func() time.Time
}

// New returns a Clock backed by the real wall clock.
func New() *Clock {
	return &Clock{Source: time.Now}
}

func (c *Clock) now() time.Time {
	if c == nil || c.Source == nil {
		return time.Now()
	}
	return c.Source()
}

// Now returns the current time in seconds, fractional part carrying
// microsecond resolution.
func (c *Clock) Now() float64 {
	t := c.now()
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// PrefetchStamp returns Now() - tDiskMicros, i.e. a stamp as if the page
// had been fetched one disk-latency ago. This is how a page moved from the
// prefetch buffer into the cache gets counted as a hit instead of a miss
// (spec.md §4.6): the very next duplicate-insert sees a stamp already
// older than t_disk.
func (c *Clock) PrefetchStamp(tDiskMicros float64) float64 {
	return c.Now() - tDiskMicros/1e6
}
