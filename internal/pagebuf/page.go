// Package pagebuf implements the ordered page set shared by the LRU
// demand-cache buffer and the TTL-based prefetch buffer, plus the
// exponential-moving-average hit-ratio bookkeeping both buffers carry.
package pagebuf

import "github.com/bulletproofpenguin/predictive-cache/internal/simtrace"

// Page is one admitted block of a file. Two Pages are equal iff they name
// the same file path and block number.
type Page struct {
	File     *simtrace.Call
	BlockNum int // 1-based index within File
	Stamp    float64 // admission time, seconds
}

// Equal compares Pages by (file path, block number) identity only — Stamp
// is not part of identity, so re-admitting the same block leaves the
// existing page (its stamp and its position in the set) unchanged rather
// than creating a duplicate.
func (p Page) Equal(other Page) bool {
	return p.File.Path == other.File.Path && p.BlockNum == other.BlockNum
}
