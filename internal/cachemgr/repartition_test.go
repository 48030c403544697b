package cachemgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepartition_CapacityInvariantAlwaysHolds(t *testing.T) {
	m, _ := newTestManager(100, true)

	scenarios := []struct {
		prefetchLast, prefetchHits, prefetchMisses float64
		cacheLast                                  float64
	}{
		{0, 0, 0, 0},                 // both EMAs at rest -> stability reset
		{0.9, 0, 10, 0.2},            // prefetch improving a lot less than cache
		{0.9, 10, 0, 0.2},            // prefetch improving a lot more than cache
	}

	for _, s := range scenarios {
		m.Prefetch.LastHitRatio = s.prefetchLast
		m.Prefetch.HitCount = int64(s.prefetchHits)
		m.Prefetch.MissCount = int64(s.prefetchMisses)
		m.Cache.LastHitRatio = s.cacheLast

		m.repartition()

		assert.Equal(t, m.TotalPages, m.Cache.Capacity+m.Prefetch.Capacity, "capacity invariant")
		assert.GreaterOrEqual(t, m.Cache.Capacity, int64(1))
		assert.GreaterOrEqual(t, m.Prefetch.Capacity, int64(0))
		assert.LessOrEqual(t, m.Cache.Size(), m.Cache.Capacity)
		assert.LessOrEqual(t, m.Prefetch.Size(), m.Prefetch.Capacity)
	}
}

func TestRepartition_StabilityClampsToExpectedFormula(t *testing.T) {
	m, _ := newTestManager(1000, true)
	// both EMAs at rest
	m.Prefetch.LastHitRatio = 0
	m.Cache.LastHitRatio = 0

	m.repartition()

	horizon := m.Tunables.PrefetchHorizon()
	upper := int64(float64(m.TotalPages) * m.Tunables.PrefetchCapacityFraction)
	assert.GreaterOrEqual(t, m.Prefetch.Capacity, horizon)
	assert.LessOrEqual(t, m.Prefetch.Capacity, upper)
}

func TestRepartition_MinimumChanceStaysWithinBounds(t *testing.T) {
	m, _ := newTestManager(100, true)
	m.MinimumChance = 0.85

	for i := 0; i < 10; i++ {
		m.Prefetch.LastHitRatio = 0
		m.Prefetch.HitCount = 10
		m.Prefetch.MissCount = 0
		m.Cache.LastHitRatio = 0.9
		m.repartition()
	}

	assert.LessOrEqual(t, m.MinimumChance, m.Tunables.MinimumChanceCeil)
	assert.GreaterOrEqual(t, m.MinimumChance, m.Tunables.MinimumChanceFloor)
}
