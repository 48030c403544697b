package simtrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallTime_SubWrapsAtMidnight(t *testing.T) {
	// GIVEN a call just after midnight and one just before it
	late := WallTime{Hour: 23, Minute: 59, Second: 59, Microsecond: 0}
	early := WallTime{Hour: 0, Minute: 0, Second: 1, Microsecond: 0}

	// WHEN the trace rolled over midnight between them
	diff := early.Sub(late)

	// THEN the gap is computed as if both fell on the same day
	assert.InDelta(t, 2.0, diff, 1e-9)
}

func TestWallTime_SubOrdinary(t *testing.T) {
	a := WallTime{Hour: 1, Minute: 0, Second: 0, Microsecond: 500_000}
	b := WallTime{Hour: 1, Minute: 0, Second: 0, Microsecond: 0}
	assert.InDelta(t, 0.5, a.Sub(b), 1e-9)
}

func TestCall_EqualOnlyForOpenSamePath(t *testing.T) {
	a := &Call{Kind: KindOpen, Path: "/x"}
	b := &Call{Kind: KindOpen, Path: "/x"}
	c := &Call{Kind: KindOpen, Path: "/y"}
	read := &Call{Kind: KindRead, Path: "/x"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, read.Equal(read), "a non-open call never has identity, even with itself")
}

func TestCall_LessOrdersByWallTimeOnly(t *testing.T) {
	early := &Call{WallTime: WallTime{Second: 1}}
	late := &Call{WallTime: WallTime{Second: 2}}
	assert.True(t, early.Less(late))
	assert.False(t, late.Less(early))
}
