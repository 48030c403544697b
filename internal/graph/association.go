// Package graph implements the probability graph: a directed, weighted
// association graph mined from temporal co-access patterns in a trace,
// consulted by the cache manager when deciding what to prefetch.
package graph

import "github.com/bulletproofpenguin/predictive-cache/internal/simtrace"

// Association is a directed edge from the owning Node's file to a
// co-accessed file, weighted by how often the pair was observed together.
type Association struct {
	Call     *simtrace.Call
	Strength uint32
}
