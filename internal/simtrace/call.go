// Package simtrace holds the immutable Call record mined by the graph and
// cache manager, and the parsers that build Calls from recorded traces.
//
// This package has no dependency on graph/callwindow/pagebuf/cachemgr — it
// stores pure data, the same separation the teacher draws around its own
// trace package.
package simtrace

import "fmt"

// DefaultBytes is used whenever a trace record's byte size is unknown or
// zero, for both accepted trace formats.
const DefaultBytes = 512

// Kind enumerates the system-call types the parser recognizes. Only
// KindOpen ever participates in the probability graph or call window; the
// others are parsed so a mixed trace doesn't get rejected wholesale, but
// the core has no use for them beyond that.
type Kind string

const (
	KindOpen  Kind = "open"
	KindRead  Kind = "read"
	KindWrite Kind = "write"
	KindClose Kind = "close"
)

// WallTime is an hour/minute/second/microsecond decomposition of a trace
// timestamp. Subtraction (Sub) is defined modulo 24h, matching the source
// trace format's lack of a date component.
type WallTime struct {
	Hour        int
	Minute      int
	Second      int
	Microsecond int
}

// totalMicros flattens a WallTime into microseconds since local midnight.
func (w WallTime) totalMicros() int64 {
	return int64(w.Hour)*3600e6 + int64(w.Minute)*60e6 + int64(w.Second)*1e6 + int64(w.Microsecond)
}

const dayMicros = 24 * 3600 * 1e6

// Sub returns w - other, in seconds, wrapping modulo 24h when w appears to
// be "earlier in the day" than other (the trace rolled over midnight).
func (w WallTime) Sub(other WallTime) float64 {
	diff := w.totalMicros() - other.totalMicros()
	if diff < 0 {
		diff += dayMicros
	}
	return float64(diff) / 1e6
}

// Less orders two WallTimes lexicographically on hour, minute, second,
// microsecond.
func (w WallTime) Less(other WallTime) bool {
	return w.totalMicros() < other.totalMicros()
}

// Call is an immutable descriptor of a single traced system call. Once
// parsed, a Call is never mutated; Nodes, Associations, Pages, and the call
// window only ever hold references to it.
type Call struct {
	Kind     Kind
	Path     string
	Bytes    int64
	WallTime WallTime
	StreamID int
}

// String renders a Call for debug logging.
func (c *Call) String() string {
	if c == nil {
		return "<nil call>"
	}
	return fmt.Sprintf("%s %s @%02d:%02d:%02d.%06d (stream %d, %d bytes)",
		c.Kind, c.Path, c.WallTime.Hour, c.WallTime.Minute, c.WallTime.Second, c.WallTime.Microsecond, c.StreamID, c.Bytes)
}

// Equal implements the spec's identity rule: two Calls are equal iff both
// are "open" calls on the same path. Every other call kind compares unequal
// to everything, including itself — it has no identity in the graph.
func (c *Call) Equal(other *Call) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Kind == KindOpen && other.Kind == KindOpen && c.Path == other.Path
}

// Less orders Calls by wall-clock time only.
func (c *Call) Less(other *Call) bool {
	return c.WallTime.Less(other.WallTime)
}
