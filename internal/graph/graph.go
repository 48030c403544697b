package graph

import (
	"sort"

	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

// Graph is a directed weighted graph of per-file association vectors,
// mined within a temporal lookahead window. It maps a path (for "open"
// Calls) to exactly one Node.
type Graph struct {
	// LookaheadUS is the mining/trim radius, in microseconds.
	LookaheadUS int64

	Nodes []*Node
}

// New returns an empty Graph with the given lookahead, in microseconds.
func New(lookaheadUS int64) *Graph {
	return &Graph{LookaheadUS: lookaheadUS}
}

// Find returns the Node for call's path, or nil if call has never been
// seen as an "open" call. Only "open" calls are findable (Call.Equal is
// false for every other kind), matching spec.md's "will only find Nodes
// that are 'open' calls".
func (g *Graph) Find(call *simtrace.Call) *Node {
	for _, n := range g.Nodes {
		if n.Call.Equal(call) {
			return n
		}
	}
	return nil
}

// CreateNodes builds one empty Node per "open" Call in calls, ordered by
// wall-clock time. Non-"open" calls are ignored — they have no identity in
// the graph. Call LoadAssociations afterward to mine the windows.
func (g *Graph) CreateNodes(calls []*simtrace.Call) {
	opens := make([]*simtrace.Call, 0, len(calls))
	for _, c := range calls {
		if c.Kind == simtrace.KindOpen {
			opens = append(opens, c)
		}
	}
	sort.SliceStable(opens, func(i, j int) bool { return opens[i].Less(opens[j]) })

	g.Nodes = make([]*Node, 0, len(opens))
	for _, c := range opens {
		g.Nodes = append(g.Nodes, &Node{Call: c})
	}
}

// LoadAssociations mines the Nodes built by CreateNodes: for each Node i,
// it walks forward in time while the neighbour's timestamp is within
// LookaheadUS of i's, recording a strength-1 Association to every
// different file it passes. Duplicate nodes (repeated opens of the same
// path) are then merged, duplicate associations within a window are
// merged, and TotalStrength is recomputed everywhere.
func (g *Graph) LoadAssociations() {
	lookaheadSeconds := float64(g.LookaheadUS) / 1e6

	for i, node := range g.Nodes {
		for j := i + 1; j < len(g.Nodes); j++ {
			target := g.Nodes[j]
			if target.Call.WallTime.Sub(node.Call.WallTime) > lookaheadSeconds {
				break
			}
			if target.Call.Equal(node.Call) {
				continue // no self-association
			}
			node.Window = append(node.Window, Association{Call: target.Call, Strength: 1})
		}
	}

	g.Nodes = RemoveDupNodes(g.Nodes)
	for _, node := range g.Nodes {
		node.Window = RemoveDupAssociations(node.Window)
		node.RecomputeTotalStrength()
	}
}

// AssocCount returns the total number of associations currently recorded
// across every Node's window — the denominator-free half of the cache
// manager's "average associations per node" figure used when resizing the
// prefetch buffer.
func (g *Graph) AssocCount() int {
	total := 0
	for _, n := range g.Nodes {
		total += len(n.Window)
	}
	return total
}

// RemoveDupAssociations merges associations that share a target path: the
// later occurrence in window absorbs every earlier one's strength, and the
// earlier entries are dropped. Scanning is order-preserving for the
// surviving entries.
//
// Example: window [A:1, B:1, A:1] becomes [B:1, A:2].
func RemoveDupAssociations(window []Association) []Association {
	n := len(window)
	if n == 0 {
		return window
	}

	extra := make([]uint32, n)
	keep := make([]bool, n)
	lastSeen := make(map[string]int, n)

	for i := n - 1; i >= 0; i-- {
		path := window[i].Call.Path
		if j, ok := lastSeen[path]; ok {
			extra[j] += window[i].Strength
			continue
		}
		lastSeen[path] = i
		keep[i] = true
	}

	result := make([]Association, 0, n)
	for i := 0; i < n; i++ {
		if !keep[i] {
			continue
		}
		a := window[i]
		a.Strength += extra[i]
		result = append(result, a)
	}
	return result
}

// RemoveDupNodes merges Nodes that share a path: the earliest occurrence
// absorbs every later duplicate's window (concatenated, not re-deduped —
// callers run RemoveDupAssociations afterward if they need that) and
// TotalStrength (summed). Precondition: nodes is ordered temporally.
func RemoveDupNodes(nodes []*Node) []*Node {
	result := make([]*Node, 0, len(nodes))
	first := make(map[string]*Node, len(nodes))

	for _, n := range nodes {
		if existing, ok := first[n.Call.Path]; ok {
			existing.Window = append(existing.Window, n.Window...)
			existing.TotalStrength += n.TotalStrength
			continue
		}
		first[n.Call.Path] = n
		result = append(result, n)
	}
	return result
}
