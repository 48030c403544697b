// Package callwindow implements the short sliding temporal window of
// recent "open" calls that mutates the probability graph online, as new
// calls arrive during replay.
package callwindow

import (
	"github.com/bulletproofpenguin/predictive-cache/internal/graph"
	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

// CallWindow is a time-ordered set of recent Calls, paired with the graph
// it keeps mutating. Precondition on every call into Insert: call.Kind ==
// simtrace.KindOpen — the window and the graph it feeds only ever deal in
// open-call identity (spec.md's Call.Equal is false for anything else).
type CallWindow struct {
	Graph *graph.Graph

	// Lookahead is the trim radius, in microseconds: after each insertion
	// last.time - first.time must be <= Lookahead.
	Lookahead int64

	// Calls holds the window's contents in ascending wall-clock order.
	Calls []*simtrace.Call
}

// New returns an empty CallWindow over g.
func New(g *graph.Graph, lookaheadUS int64) *CallWindow {
	return &CallWindow{Graph: g, Lookahead: lookaheadUS}
}

// Insert folds call into the window and the graph: it strengthens every
// node currently in the window toward call (skipping call's own node, if
// any, to avoid a self-association), creates or rebuilds call's node, then
// appends call and trims the window back down to the lookahead radius.
func (w *CallWindow) Insert(call *simtrace.Call) {
	pending := graph.Association{Call: call, Strength: 1}
	existing := w.Graph.Find(call)

	if existing == nil {
		node := &graph.Node{Call: call}
		w.Graph.Nodes = append(w.Graph.Nodes, node)
		if len(w.Calls) >= 2 {
			w.strengthenTowards(pending, nil)
		}
	} else {
		if len(w.Calls) >= 2 {
			w.strengthenTowards(pending, existing)
		}
		// Rebuild in place: point the node at the freshest Call instance
		// while keeping its accumulated window and total strength.
		existing.Call = call
	}

	w.Calls = append(w.Calls, call)
	w.trim()
}

// strengthenTowards adds pending to every node currently represented in
// the window, except skip (the node for the call being inserted, when it
// already exists — a node never associates with itself).
func (w *CallWindow) strengthenTowards(pending graph.Association, skip *graph.Node) {
	for _, c := range w.Calls {
		node := w.Graph.Find(c)
		if node == nil || node == skip {
			continue
		}
		node.Window = append(node.Window, pending)
		node.TotalStrength++
		node.Window = graph.RemoveDupAssociations(node.Window)
		node.RecomputeTotalStrength()
	}
}

// trim evicts from the head of the window while its span exceeds the
// lookahead radius.
func (w *CallWindow) trim() {
	lookaheadSeconds := float64(w.Lookahead) / 1e6
	for len(w.Calls) > 1 {
		first := w.Calls[0]
		last := w.Calls[len(w.Calls)-1]
		if last.WallTime.Sub(first.WallTime) > lookaheadSeconds {
			w.Calls = w.Calls[1:]
			continue
		}
		break
	}
}
