package pagebuf

// Buffer is the data shape shared by the demand-cache and prefetch
// buffers: a capacity-bounded OrderedSet plus the hit/miss counters an
// exponential moving average of hit ratio is computed from. Eviction
// policy (plain LRU vs TTL-based) lives one layer up, in the cache
// manager that owns a pair of these.
type Buffer struct {
	Capacity       int64
	PagesAvailable int64

	HitCount  int64
	MissCount int64

	// Gamma weights the EMA blend: last = (1-Gamma)*last + Gamma*current.
	Gamma        float64
	LastHitRatio float64

	Set *OrderedSet
}

// NewBuffer returns an empty Buffer with the given capacity (in pages)
// and EMA smoothing factor.
func NewBuffer(capacity int64, gamma float64) *Buffer {
	return &Buffer{
		Capacity:       capacity,
		PagesAvailable: capacity,
		Gamma:          gamma,
		Set:            NewOrderedSet(),
	}
}

// Size returns the number of pages currently held.
func (b *Buffer) Size() int64 { return int64(b.Set.Len()) }

// Contains reports whether any page for path is currently held.
func (b *Buffer) Contains(path string) bool { return b.Set.Contains(path) }

// Insert admits page into the ordered set and refreshes PagesAvailable.
// Hit/miss accounting is the cache manager's job, not the buffer's — a
// re-insertion is only a "hit" once the manager confirms the existing
// page's stamp is old enough to have actually been served from this
// buffer (see cachemgr, which uses the stamp trick to make a page that
// was just prefetched count as a hit on its first real access).
func (b *Buffer) Insert(page Page) (wasNew bool, stored Page) {
	wasNew, stored = b.Set.Insert(page)
	b.refreshAvailable()
	return wasNew, stored
}

// EvictFront removes and returns the current eviction victim.
func (b *Buffer) EvictFront() (Page, bool) {
	p, ok := b.Set.RemoveFront()
	b.refreshAvailable()
	return p, ok
}

// HasPage reports whether page is already a member, without mutating.
func (b *Buffer) HasPage(page Page) bool { return b.Set.HasPage(page) }

// Oldest peeks at the eviction victim without removing it.
func (b *Buffer) Oldest() (Page, bool) { return b.Set.Front() }

// DrainPath removes and returns every page belonging to path.
func (b *Buffer) DrainPath(path string) []Page {
	removed := b.Set.RemoveAllForPath(path)
	b.refreshAvailable()
	return removed
}

func (b *Buffer) refreshAvailable() {
	b.PagesAvailable = b.Capacity - b.Size()
}

// TrimToCapacity lowers (or raises) Capacity to newCapacity, evicting from
// the head until Size is no larger than it. Returns whatever was evicted.
func (b *Buffer) TrimToCapacity(newCapacity int64) []Page {
	b.Capacity = newCapacity
	var evicted []Page
	for int64(b.Set.Len()) > newCapacity {
		p, ok := b.Set.RemoveFront()
		if !ok {
			break
		}
		evicted = append(evicted, p)
	}
	b.refreshAvailable()
	return evicted
}

// currentRaw is hits/(hits+misses), or 0 before any admission has happened.
func (b *Buffer) currentRaw() float64 {
	total := b.HitCount + b.MissCount
	if total == 0 {
		return 0
	}
	return float64(b.HitCount) / float64(total)
}

// CurrentHitRatio applies the EMA blend against LastHitRatio without
// persisting the result — repartitioning reads this as the "current" half
// of Δ/Θ while leaving the persisted average untouched.
func (b *Buffer) CurrentHitRatio() float64 {
	return (1-b.Gamma)*b.LastHitRatio + b.Gamma*b.currentRaw()
}

// UpdateHitRatio computes CurrentHitRatio and persists it as the new
// LastHitRatio, then returns it. The first call is intentionally biased
// toward the first observation by Gamma — this is not re-corrected.
func (b *Buffer) UpdateHitRatio() float64 {
	v := b.CurrentHitRatio()
	b.LastHitRatio = v
	return v
}
