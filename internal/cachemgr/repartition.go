package cachemgr

import "math"

// repartition runs whenever a buffer is full and needs a page. It
// compares each buffer's EMA delta against the other's, moves capacity
// from whichever buffer is improving less, and nudges minimum_chance in
// the direction that favors the buffer being grown. Every path preserves
// cache.capacity + prefetch.capacity == total_pages and both capacities
// non-negative.
func (m *Manager) repartition() {
	delta := m.Prefetch.CurrentHitRatio() - m.Prefetch.LastHitRatio
	theta := m.Cache.CurrentHitRatio() - m.Cache.LastHitRatio

	switch {
	case math.Abs(delta) <= m.Tunables.Epsilon && math.Abs(theta) <= m.Tunables.Epsilon:
		m.resetOptimalPrefetchCapacity()
	case delta < theta:
		m.shiftPrefetchCapacity(-1)
		m.adjustMinimumChance(m.Tunables.MinimumChanceStep)
	case delta > theta:
		m.shiftPrefetchCapacity(1)
		m.adjustMinimumChance(-m.Tunables.MinimumChanceStep)
	}

	switch {
	case delta > 0:
		m.adjustMinimumChance(m.Tunables.MinimumChanceStep)
	case delta < 0:
		m.adjustMinimumChance(-m.Tunables.MinimumChanceStep)
	}
}

func (m *Manager) adjustMinimumChance(step float64) {
	m.MinimumChance += step
	if m.MinimumChance > m.Tunables.MinimumChanceCeil {
		m.MinimumChance = m.Tunables.MinimumChanceCeil
	}
	if m.MinimumChance < m.Tunables.MinimumChanceFloor {
		m.MinimumChance = m.Tunables.MinimumChanceFloor
	}
}

// resetOptimalPrefetchCapacity recomputes prefetch capacity from the
// graph's average associations per node, scaled by prefetch_horizon and
// the prefetch buffer's current hit ratio.
func (m *Manager) resetOptimalPrefetchCapacity() {
	nodeCount := len(m.Graph.Nodes)
	optimal := 0.0
	if nodeCount > 0 {
		optimal = (float64(m.Graph.AssocCount()) / float64(nodeCount)) *
			float64(m.Tunables.PrefetchHorizon()) * m.Prefetch.CurrentHitRatio()
	}
	m.setPrefetchCapacity(int64(math.Round(optimal)))
}

func (m *Manager) shiftPrefetchCapacity(delta int64) {
	m.setPrefetchCapacity(m.Prefetch.Capacity + delta)
}

// setPrefetchCapacity clamps newCapacity into [prefetch_horizon,
// floor(PrefetchCapacityFraction*total_pages)] — widened to
// prefetch_horizon if that upper bound would otherwise sit below it for
// a small total_pages — trims either buffer down to its resulting
// capacity, and keeps cache.capacity + prefetch.capacity == total_pages
// exactly, with cache.capacity never dropping below 1.
func (m *Manager) setPrefetchCapacity(newCapacity int64) {
	lower := m.Tunables.PrefetchHorizon()
	upper := int64(math.Floor(m.Tunables.PrefetchCapacityFraction * float64(m.TotalPages)))
	if upper < lower {
		upper = lower
	}
	if newCapacity < lower {
		newCapacity = lower
	}
	if newCapacity > upper {
		newCapacity = upper
	}

	cacheCapacity := m.TotalPages - newCapacity
	if cacheCapacity < 1 {
		cacheCapacity = 1
		newCapacity = m.TotalPages - cacheCapacity
	}

	m.Prefetch.TrimToCapacity(newCapacity)
	m.Cache.TrimToCapacity(cacheCapacity)
}
