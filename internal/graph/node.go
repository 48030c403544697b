package graph

import "github.com/bulletproofpenguin/predictive-cache/internal/simtrace"

// Node is one file's entry in the probability graph: the Call that
// identifies it, and the window of Associations observed to co-occur with
// it inside the mining lookahead.
type Node struct {
	Call          *simtrace.Call
	Window        []Association
	TotalStrength uint32
}

// RecomputeTotalStrength re-establishes the invariant that TotalStrength
// equals the sum of the window's strengths. Every mutation batch that
// touches a Node's window — here and in package callwindow — calls this
// before returning control to the caller.
func (n *Node) RecomputeTotalStrength() {
	var total uint32
	for _, a := range n.Window {
		total += a.Strength
	}
	n.TotalStrength = total
}
