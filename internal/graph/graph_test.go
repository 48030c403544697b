package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

func openAt(path string, second int, micros int) *simtrace.Call {
	return &simtrace.Call{
		Kind:     simtrace.KindOpen,
		Path:     path,
		Bytes:    512,
		WallTime: simtrace.WallTime{Second: second, Microsecond: micros},
		StreamID: 1,
	}
}

func TestRemoveDupAssociations_LaterAbsorbsEarlier(t *testing.T) {
	// GIVEN a window [A:1, B:1, A:1]
	a1 := Association{Call: openAt("A", 0, 0), Strength: 1}
	b1 := Association{Call: openAt("B", 0, 0), Strength: 1}
	a2 := Association{Call: openAt("A", 0, 0), Strength: 1}
	window := []Association{a1, b1, a2}

	// WHEN RemoveDupAssociations runs
	got := RemoveDupAssociations(window)

	// THEN the result is [B:1, A:2]
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Call.Path)
	assert.Equal(t, uint32(1), got[0].Strength)
	assert.Equal(t, "A", got[1].Call.Path)
	assert.Equal(t, uint32(2), got[1].Strength)
}

func TestLoadAssociations_LookaheadClipping(t *testing.T) {
	// GIVEN lookahead = 1000us and trace [A@0us, B@500us, C@1200us]
	g := New(1000)
	a := openAt("A", 0, 0)
	b := openAt("B", 0, 500)
	c := openAt("C", 0, 1200)
	g.CreateNodes([]*simtrace.Call{a, b, c})

	// WHEN associations are mined
	g.LoadAssociations()

	// THEN A associates with B only, not C
	nodeA := g.Find(a)
	require.NotNil(t, nodeA)
	require.Len(t, nodeA.Window, 1)
	assert.Equal(t, "B", nodeA.Window[0].Call.Path)
}

func TestLoadAssociations_NoSelfLoop(t *testing.T) {
	g := New(10_000_000)
	a1 := openAt("A", 0, 0)
	a2 := openAt("A", 0, 100)
	g.CreateNodes([]*simtrace.Call{a1, a2})

	g.LoadAssociations()

	require.Len(t, g.Nodes, 1)
	for _, assoc := range g.Nodes[0].Window {
		assert.NotEqual(t, g.Nodes[0].Call.Path, assoc.Call.Path)
	}
}

func TestLoadAssociations_TotalStrengthInvariant(t *testing.T) {
	g := New(10_000_000)
	calls := []*simtrace.Call{
		openAt("A", 0, 0),
		openAt("B", 0, 10),
		openAt("C", 0, 20),
		openAt("A", 0, 30),
	}
	g.CreateNodes(calls)
	g.LoadAssociations()

	for _, n := range g.Nodes {
		var sum uint32
		for _, a := range n.Window {
			sum += a.Strength
		}
		assert.Equal(t, sum, n.TotalStrength, "node %s total strength invariant", n.Call.Path)
	}
}

func TestFind_OnlyOpenCallsAreFindable(t *testing.T) {
	g := New(1000)
	a := openAt("A", 0, 0)
	g.CreateNodes([]*simtrace.Call{a})
	g.LoadAssociations()

	closeCall := &simtrace.Call{Kind: simtrace.KindClose, Path: "A"}
	assert.Nil(t, g.Find(closeCall))
	assert.NotNil(t, g.Find(a))
}

func TestRemoveDupNodes_EarliestAbsorbsLater(t *testing.T) {
	n1 := &Node{Call: openAt("A", 0, 0), TotalStrength: 1, Window: []Association{{Call: openAt("X", 0, 0), Strength: 1}}}
	n2 := &Node{Call: openAt("B", 0, 1), TotalStrength: 1}
	n3 := &Node{Call: openAt("A", 0, 2), TotalStrength: 2, Window: []Association{{Call: openAt("Y", 0, 0), Strength: 2}}}

	got := RemoveDupNodes([]*Node{n1, n2, n3})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Call.Path)
	assert.Equal(t, uint32(3), got[0].TotalStrength)
	assert.Len(t, got[0].Window, 2)
	assert.Equal(t, "B", got[1].Call.Path)
}
