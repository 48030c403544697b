// Package router is the thin dispatcher between the trace replay loop and
// the cache manager — the same pass-through role the source's FS
// simulator plays between its driver and its Cache_Manager.
package router

import (
	"github.com/bulletproofpenguin/predictive-cache/internal/cachemgr"
	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

// Router forwards each replayed call to the cache manager and reports the
// outcome. Only "open" calls reach the manager — every other kind is
// accepted (so a mixed trace never aborts replay) but has no effect,
// matching simtrace.Call's identity rule.
type Router struct {
	Manager  *cachemgr.Manager
	Reporter Reporter
}

// New returns a Router over manager, reporting through reporter.
func New(manager *cachemgr.Manager, reporter Reporter) *Router {
	return &Router{Manager: manager, Reporter: reporter}
}

// Serve dispatches one call. Returns false without doing anything for any
// kind other than "open".
func (r *Router) Serve(call *simtrace.Call) bool {
	if call.Kind != simtrace.KindOpen {
		return false
	}

	admitted := r.Manager.Allocate(call)

	if r.Reporter != nil {
		r.Reporter.Report(Event{
			Call:                 call,
			Admitted:             admitted,
			CacheHitRatio:        r.Manager.Cache.LastHitRatio,
			PrefetchHitRatio:     r.Manager.Prefetch.LastHitRatio,
			MinimumChance:        r.Manager.MinimumChance,
			CacheCapacity:        r.Manager.Cache.Capacity,
			PrefetchCapacity:     r.Manager.Prefetch.Capacity,
			CachePagesAvailable:  r.Manager.Cache.PagesAvailable,
			PrefetchPagesAvail:   r.Manager.Prefetch.PagesAvailable,
		})
	}

	return admitted
}
