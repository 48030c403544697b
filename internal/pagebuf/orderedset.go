package pagebuf

import "sort"

// OrderedSet keeps Pages sorted so that the head is always the eviction
// victim: pages belonging to the same file sort by BlockNum, pages
// belonging to different files sort by the admission time of whichever
// file got there first (groupStamp). This gives "LRU victim across files,
// block order within a file" without re-deriving a file's admission time
// from whichever of its blocks happens to have been touched most recently.
type OrderedSet struct {
	items      []Page
	groupStamp map[string]float64
}

// NewOrderedSet returns an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{groupStamp: make(map[string]float64)}
}

func (s *OrderedSet) less(a, b Page) bool {
	ga, ok := s.groupStamp[a.File.Path]
	if !ok {
		ga = a.Stamp
	}
	gb, ok := s.groupStamp[b.File.Path]
	if !ok {
		gb = b.Stamp
	}
	if ga != gb {
		return ga < gb
	}
	if a.File.Path != b.File.Path {
		return a.File.Path < b.File.Path
	}
	return a.BlockNum < b.BlockNum
}

// Len returns the number of pages currently held.
func (s *OrderedSet) Len() int { return len(s.items) }

// Contains reports whether any page for path is currently held.
func (s *OrderedSet) Contains(path string) bool {
	for _, p := range s.items {
		if p.File.Path == path {
			return true
		}
	}
	return false
}

// HasPage reports whether a page with the same identity as page is held.
func (s *OrderedSet) HasPage(page Page) bool {
	for _, p := range s.items {
		if p.Equal(page) {
			return true
		}
	}
	return false
}

// Front returns the eviction victim — the lowest-ordered page — without
// removing it.
func (s *OrderedSet) Front() (Page, bool) {
	if len(s.items) == 0 {
		return Page{}, false
	}
	return s.items[0], true
}

// Insert adds page if no page with the same identity is already present.
// It returns (true, page) on a fresh insert, or (false, existing) if page
// was already a member — the caller decides how to treat the collision
// (spec.md: this is the hit/miss signal at the buffer boundary).
func (s *OrderedSet) Insert(page Page) (bool, Page) {
	for _, p := range s.items {
		if p.Equal(page) {
			return false, p
		}
	}
	if _, ok := s.groupStamp[page.File.Path]; !ok {
		s.groupStamp[page.File.Path] = page.Stamp
	}
	idx := sort.Search(len(s.items), func(i int) bool { return !s.less(s.items[i], page) })
	s.items = append(s.items, Page{})
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = page
	return true, page
}

// RemoveFront removes and returns the eviction victim.
func (s *OrderedSet) RemoveFront() (Page, bool) {
	p, ok := s.Front()
	if !ok {
		return Page{}, false
	}
	s.removeAt(0)
	return p, true
}

// RemoveAllForPath removes and returns every page belonging to path, in
// ascending BlockNum order (their relative order in the set is preserved).
func (s *OrderedSet) RemoveAllForPath(path string) []Page {
	var removed []Page
	kept := s.items[:0]
	for _, p := range s.items {
		if p.File.Path == path {
			removed = append(removed, p)
		} else {
			kept = append(kept, p)
		}
	}
	s.items = kept
	if len(removed) > 0 {
		delete(s.groupStamp, path)
	}
	return removed
}

func (s *OrderedSet) removeAt(i int) {
	path := s.items[i].File.Path
	s.items = append(s.items[:i], s.items[i+1:]...)
	for _, p := range s.items {
		if p.File.Path == path {
			return
		}
	}
	delete(s.groupStamp, path)
}
