package analysis

import (
	"math"
	"sort"
)

// DefaultTopK is how many transitions the ranked view shows.
const DefaultTopK = 12

// Transition is one cell of a transition matrix.
type Transition struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Probability float64 `json:"probability"`
}

// SelfLoop reports whether the transition stays in the same state.
func (t Transition) SelfLoop() bool {
	return t.From == t.To
}

// DeriveTopTransitions returns the k most probable transitions of P, self
// loops included. Equal probabilities keep row-major order. The result has
// min(k, len(states)^2) entries; k <= 0 yields none.
func DeriveTopTransitions(states []string, p [][]float64, k int) []Transition {
	n := len(states)
	if k <= 0 || n == 0 {
		return nil
	}

	all := make([]Transition, 0, n*n)
	for i, from := range states {
		var row []float64
		if i < len(p) {
			row = p[i]
		}
		for j, to := range states {
			var prob float64
			if j < len(row) {
				prob = row[j]
			}
			all = append(all, Transition{From: from, To: to, Probability: prob})
		}
	}

	sort.SliceStable(all, func(a, b int) bool {
		return sortKey(all[a].Probability) > sortKey(all[b].Probability)
	})

	if k < len(all) {
		all = all[:k]
	}
	return all
}

// TopForView ranks the transitions of an available matrix view.
func TopForView(v MatrixView, k int) []Transition {
	if !v.Available {
		return nil
	}
	return DeriveTopTransitions(v.States, v.P, k)
}

// sortKey orders NaN below every number so the comparison stays a strict
// weak ordering.
func sortKey(p float64) float64 {
	if math.IsNaN(p) {
		return math.Inf(-1)
	}
	return p
}
