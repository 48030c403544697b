package router

import (
	"fmt"
	"io"

	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

// Event is a snapshot of cache-manager state taken right after one call
// was served.
type Event struct {
	Call     *simtrace.Call
	Admitted bool

	CacheHitRatio    float64
	PrefetchHitRatio float64
	MinimumChance    float64

	CacheCapacity       int64
	PrefetchCapacity    int64
	CachePagesAvailable int64
	PrefetchPagesAvail  int64
}

// Reporter is notified after every served request. Implementations decide
// how (or whether) to surface that — to a terminal, a file, a metrics
// sink — the router itself has no opinion.
type Reporter interface {
	Report(Event)
}

// StdoutReporter prints one line per request, the default reporter a run
// gets when no other sink is configured.
type StdoutReporter struct {
	Out io.Writer
}

// Report writes a single summary line for ev.
func (r *StdoutReporter) Report(ev Event) {
	fmt.Fprintf(r.Out, "%s admitted=%t cache_hit_ratio=%.4f prefetch_hit_ratio=%.4f minimum_chance=%.2f cache=%d/%d prefetch=%d/%d\n",
		ev.Call.Path, ev.Admitted, ev.CacheHitRatio, ev.PrefetchHitRatio, ev.MinimumChance,
		ev.CacheCapacity-ev.CachePagesAvailable, ev.CacheCapacity,
		ev.PrefetchCapacity-ev.PrefetchPagesAvail, ev.PrefetchCapacity)
}

// NoopReporter discards every event — used by tests.
type NoopReporter struct{}

// Report does nothing.
func (NoopReporter) Report(Event) {}
