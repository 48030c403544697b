// Package cachemgr implements the cache manager: the orchestrator that
// receives each "open" call, runs the online call-window/graph update,
// predicts and pipelines prefetches, admits the demanded file into the
// LRU buffer, and adaptively repartitions capacity between the two
// buffers from their weighted-moving-average hit ratios.
package cachemgr

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/bulletproofpenguin/predictive-cache/internal/callwindow"
	"github.com/bulletproofpenguin/predictive-cache/internal/graph"
	"github.com/bulletproofpenguin/predictive-cache/internal/pagebuf"
	"github.com/bulletproofpenguin/predictive-cache/internal/simclock"
	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

// Manager owns the demand (LRU) and prefetch buffers, the probability
// graph and its call window, and drives admission for every replayed
// call. It is single-threaded and cooperative: Allocate runs to
// completion before the next call is considered.
type Manager struct {
	Tunables Tunables
	Log      *logrus.Logger

	Prefetching   bool
	MinimumChance float64
	TotalPages    int64

	Cache    *pagebuf.Buffer
	Prefetch *pagebuf.Buffer

	Graph  *graph.Graph
	Window *callwindow.CallWindow
	Clock  *simclock.Clock

	lastHitRatioUpdate float64
}

// New builds a Manager. With prefetching on, total_pages is split evenly
// between the two buffers; with prefetching off there is no prefetch
// buffer at all and the demand cache gets every page (spec.md §3:
// "capacity_cache + capacity_prefetch = total_pages whenever prefetching
// is on" — otherwise cache.capacity == total_pages).
func New(g *graph.Graph, w *callwindow.CallWindow, clock *simclock.Clock, totalPages int64, minimumChance float64, prefetching bool, tunables Tunables, log *logrus.Logger) *Manager {
	cacheCapacity := totalPages
	var prefetchCapacity int64
	if prefetching {
		prefetchCapacity = totalPages / 2
		cacheCapacity = totalPages - prefetchCapacity
	}
	return &Manager{
		Tunables:      tunables,
		Log:           log,
		Prefetching:   prefetching,
		MinimumChance: minimumChance,
		TotalPages:    totalPages,
		Cache:         pagebuf.NewBuffer(cacheCapacity, tunables.Gamma),
		Prefetch:      pagebuf.NewBuffer(prefetchCapacity, tunables.Gamma),
		Graph:         g,
		Window:        w,
		Clock:         clock,
	}
}

func pagesFor(call *simtrace.Call, blockSize int64) int {
	if blockSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(call.Bytes) / float64(blockSize)))
}

// Allocate runs the admission protocol for one "open" call: refreshes the
// hit-ratio EMAs, then either a plain LRU admission (prefetching off) or
// the full call-window/prefetch/drain/admit pipeline (prefetching on).
func (m *Manager) Allocate(call *simtrace.Call) bool {
	m.updateHitRatios()

	if !m.Prefetching {
		return m.lruAllocate(call, false)
	}

	m.Window.Insert(call)
	m.prefetchFrom(call)

	isPrefetched, hits, misses := m.drainPrefetched(call)
	m.Prefetch.HitCount += hits
	m.Prefetch.MissCount += misses

	return m.lruAllocate(call, isPrefetched)
}

// updateHitRatios recomputes and persists both EMAs if at least
// HitRatioRefreshIntervalUS has elapsed since the last update.
func (m *Manager) updateHitRatios() {
	now := m.Clock.Now()
	if now-m.lastHitRatioUpdate < m.Tunables.HitRatioRefreshIntervalUS/1e6 {
		return
	}
	m.Cache.UpdateHitRatio()
	m.Prefetch.UpdateHitRatio()
	m.lastHitRatioUpdate = now
}

// drainPrefetched removes every page belonging to call's path from the
// prefetch buffer. If at least one was found and old enough (stamp age
// >= t_disk, the signal that it was genuinely prefetched ahead of time
// rather than admitted moments ago), the file's required block count is
// credited as prefetch hits; otherwise as prefetch misses.
func (m *Manager) drainPrefetched(call *simtrace.Call) (isPrefetched bool, hits, misses int64) {
	drained := m.Prefetch.DrainPath(call.Path)
	required := int64(pagesFor(call, m.Tunables.BlockSize))
	if required == 0 {
		return false, 0, 0
	}

	if len(drained) == 0 {
		return false, 0, required
	}

	oldest := drained[0].Stamp
	for _, p := range drained[1:] {
		if p.Stamp < oldest {
			oldest = p.Stamp
		}
	}
	tDiskSeconds := m.Tunables.TDiskUS / 1e6
	if m.Clock.Now()-oldest >= tDiskSeconds {
		return true, required, 0
	}
	return false, 0, required
}

// lruAllocate admits call's required blocks into the demand cache. A
// duplicate insert is a hit once the existing page's stamp is older than
// t_disk, a miss otherwise. A fresh insert promoted from the prefetch
// buffer (isPrefetched) is a cache hit too — spec.md §8's "Prefetch→cache
// promotion" scenario counts the page as already fetched, not newly
// missed — while any other fresh insert is neither counted nor missed, it
// simply hasn't been asked for twice yet. A page admitted on behalf of a
// confirmed prefetch is also stamped t_disk in the past, so its very next
// duplicate insert (a further re-read) is counted as a hit immediately.
func (m *Manager) lruAllocate(call *simtrace.Call, isPrefetched bool) bool {
	pagesRequired := pagesFor(call, m.Tunables.BlockSize)
	tDiskSeconds := m.Tunables.TDiskUS / 1e6

	admit := func(page pagebuf.Page) {
		wasNew, stored := m.Cache.Insert(page)
		switch {
		case !wasNew && m.Clock.Now()-stored.Stamp > tDiskSeconds:
			m.Cache.HitCount++
		case !wasNew:
			m.Cache.MissCount++
		case isPrefetched:
			m.Cache.HitCount++
		}
	}

	for i := 1; i <= pagesRequired; i++ {
		stamp := m.Clock.Now()
		if isPrefetched {
			stamp = m.Clock.PrefetchStamp(m.Tunables.TDiskUS)
		}
		page := pagebuf.Page{File: call, BlockNum: i, Stamp: stamp}

		if m.Cache.PagesAvailable > 0 {
			admit(page)
			continue
		}

		if m.Prefetching {
			m.repartition()
			if m.Cache.PagesAvailable <= 0 {
				continue // repartition freed nothing; skip this block
			}
			admit(page)
			continue
		}

		m.Cache.EvictFront()
		admit(page)
	}
	return true
}

// prefetchFrom consults the graph entry for call, confirms any pipelined
// run of associations (which bypasses the minimum_chance filter), and
// admits every remaining association whose relative strength clears
// minimum_chance.
func (m *Manager) prefetchFrom(call *simtrace.Call) {
	node := m.Graph.Find(call)
	if node == nil {
		if m.Log != nil {
			m.Log.WithField("path", call.Path).Debug("graph miss: nothing to prefetch")
		}
		return
	}

	pipelined := m.pipeline(node)
	if node.TotalStrength == 0 {
		return
	}

	for _, a := range node.Window {
		if pipelined[a.Call.Path] {
			continue
		}
		if float64(a.Strength)/float64(node.TotalStrength) >= m.MinimumChance {
			m.prefetchAllocate(a.Call)
		}
	}
}

// prefetchAllocate admits call's required blocks into the prefetch
// buffer. A block already resident in the LRU cache is skipped — the
// cache is authoritative. On overflow it tries TTL eviction first, then
// repartition, retrying admission only if either freed space.
func (m *Manager) prefetchAllocate(call *simtrace.Call) bool {
	pagesRequired := pagesFor(call, m.Tunables.BlockSize)
	ttlSeconds := m.Tunables.PrefetchTTLUS() / 1e6

	for i := 1; i <= pagesRequired; i++ {
		page := pagebuf.Page{File: call, BlockNum: i, Stamp: m.Clock.Now()}

		if m.Cache.HasPage(page) {
			continue
		}

		if m.Prefetch.PagesAvailable <= 0 {
			oldest, ok := m.Prefetch.Oldest()
			if ok && m.Clock.Now()-oldest.Stamp > ttlSeconds {
				m.Prefetch.EvictFront()
			} else {
				m.repartition()
				if m.Prefetch.PagesAvailable <= 0 {
					continue
				}
			}
		}
		m.Prefetch.Insert(page)
	}
	return true
}
