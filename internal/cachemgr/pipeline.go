package cachemgr

import (
	"gonum.org/v1/gonum/mat"

	"github.com/bulletproofpenguin/predictive-cache/internal/graph"
)

// pipeline looks for a contiguous run of equal-strength, high-strength
// associations in node's window and, once confirmed by matrixCheck,
// admits every block of every file in the run into the prefetch buffer
// in one step — bypassing the minimum_chance filter entirely. It returns
// the set of paths it admitted, so the caller's ordinary per-association
// pass can skip them.
func (m *Manager) pipeline(node *graph.Node) map[string]bool {
	admitted := make(map[string]bool)
	if len(node.Window) == 0 {
		return admitted
	}

	horizon := int(m.Tunables.PrefetchHorizon())
	if horizon <= 0 {
		return admitted
	}

	for i := 0; i < len(node.Window)-1; i++ {
		if node.Window[i].Strength <= m.Tunables.PipelineStrengthThreshold {
			continue
		}

		start, end := i, i
		cumulative := node.Window[i].Strength
		for j := i + 1; j < len(node.Window) && j < i+horizon; j++ {
			if node.Window[j].Strength != node.Window[i].Strength {
				break
			}
			end++
			cumulative += node.Window[j].Strength
		}

		runLength := end - start + 1
		if runLength < horizon {
			continue
		}
		if float64(cumulative)/float64(node.TotalStrength) < m.Tunables.PipelineMinRunFraction {
			continue
		}
		if !m.matrixCheck(node, start, end) {
			continue
		}

		for j := start; j <= end; j++ {
			target := node.Window[j].Call
			if !m.Prefetch.Contains(target.Path) {
				m.prefetchAllocate(target)
			}
			admitted[target.Path] = true
		}
		i = end
	}

	return admitted
}

// matrixCheck confirms the triangular-matrix shape a pipelineable run
// must have: for each call in the run, its own node's associations are
// compared against the original node's window, keeping only those that
// appear there with a matching strength. Each row's count is the number
// of such matches; the run is accepted iff those counts strictly
// decrease row over row — a nested dependency structure in which each
// successor shares fewer future peers than its predecessor.
func (m *Manager) matrixCheck(node *graph.Node, start, end int) bool {
	n := end - start + 1
	width := len(node.Window)
	if n <= 0 || width == 0 {
		return false
	}

	indexOf := func(path string) int {
		for idx, a := range node.Window {
			if a.Call.Path == path {
				return idx
			}
		}
		return -1
	}

	indicator := mat.NewDense(n, width, nil)
	for row := 0; row < n; row++ {
		call := node.Window[start+row].Call
		target := m.Graph.Find(call)
		if target == nil {
			continue
		}
		for _, assoc := range target.Window {
			idx := indexOf(assoc.Call.Path)
			if idx < 0 || node.Window[idx].Strength != assoc.Strength {
				continue
			}
			indicator.Set(row, idx, 1)
		}
	}

	ones := make([]float64, width)
	for i := range ones {
		ones[i] = 1
	}
	onesVec := mat.NewVecDense(width, ones)

	var rowSums mat.VecDense
	rowSums.MulVec(indicator, onesVec)

	for r := 1; r < n; r++ {
		if rowSums.AtVec(r) >= rowSums.AtVec(r-1) {
			return false
		}
	}
	return true
}
