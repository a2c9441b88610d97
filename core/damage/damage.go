// Package damage implements the damage-state transition algorithm: deriving a
// new probabilistic damage distribution from a fragility function and a hazard
// intensity, and merging it with the pre-existing distribution so that damage
// accumulates monotonically across sequential hazard passes.
package damage

import (
	"math"

	"multirisk/core/fragility"
	"multirisk/internal/errors"
)

// ConservationEpsilon bounds the acceptable drift of total building counts
// within a single update
const ConservationEpsilon = 1e-9

// Transition records buildings moving from a prior damage state to a more
// severe one during one engine invocation. Retention (same state before and
// after) is not a transition. Transitions live for one invocation; persisting
// them is the caller's concern.
type Transition struct {
	// CellID identifies the exposure cell
	CellID string `json:"cell_id"`

	// Taxonomy is the building class
	Taxonomy string `json:"taxonomy"`

	// From and To are the prior and new damage states, To > From
	From int `json:"from"`
	To   int `json:"to"`

	// Buildings is the expected count moving From -> To
	Buildings float64 `json:"buildings"`
}

// Result is the outcome of one update of one (cell, class)
type Result struct {
	// Counts is the new damage-state split; same total as the input split
	Counts []float64

	// Transitions lists every strict state change with nonzero count
	Transitions []Transition
}

// Update applies one hazard intensity to one class's damage-state split.
//
// The fragility function is evaluated at the intensity to obtain the
// probability vector a pristine population would follow. For buildings
// already in state i, states below i are unreachable: the vector's mass on
// states < i is redistributed proportionally over states >= i (for functions
// carrying curves conditioned on the prior state, those curves are used
// directly instead). The per-prior-state rows are applied to the prior counts
// and summed, which keeps the total count exactly and the per-building damage
// state non-decreasing.
func Update(cellID, taxonomy string, prior []float64, fn *fragility.Function, x float64) (Result, error) {
	highest := highestPopulated(prior)
	if highest > fn.MaxState() {
		return Result{}, errors.InconsistentDamageStates(taxonomy, highest+1, fn.MaxState()+1).
			WithContext("cell", cellID)
	}

	n := fn.MaxState() + 1
	base := fn.Probabilities(x)
	out := make([]float64, n)
	var transitions []Transition

	for i := 0; i < len(prior) && i < n; i++ {
		count := prior[i]
		if count == 0 {
			continue
		}

		var row []float64
		if fn.HasConditional(i) {
			row = fn.ConditionalProbabilities(i, x)
		} else {
			row = reachableRow(base, i)
		}

		for j := i; j < n; j++ {
			moved := count * row[j]
			if moved == 0 {
				continue
			}
			out[j] += moved
			if j > i {
				transitions = append(transitions, Transition{
					CellID:    cellID,
					Taxonomy:  taxonomy,
					From:      i,
					To:        j,
					Buildings: moved,
				})
			}
		}
	}

	if !sameTotal(prior, out) {
		return Result{}, errors.Newf(errors.TypeInternal,
			"building count not conserved for taxonomy %q in cell %q", taxonomy, cellID)
	}
	return Result{Counts: out, Transitions: transitions}, nil
}

// reachableRow renormalizes a probability vector over the states a building
// in prior state i can still reach. With no mass at or above i (intensity
// below every relevant threshold) the building stays where it is, which makes
// zero-intensity passes exact no-ops.
func reachableRow(probs []float64, i int) []float64 {
	row := make([]float64, len(probs))
	var tail float64
	for j := i; j < len(probs); j++ {
		tail += probs[j]
	}
	if tail <= 0 {
		row[i] = 1
		return row
	}
	for j := i; j < len(probs); j++ {
		row[j] = probs[j] / tail
	}
	return row
}

func highestPopulated(counts []float64) int {
	for s := len(counts) - 1; s > 0; s-- {
		if counts[s] != 0 {
			return s
		}
	}
	return 0
}

func sameTotal(before, after []float64) bool {
	var a, b float64
	for _, v := range before {
		a += v
	}
	for _, v := range after {
		b += v
	}
	return math.Abs(a-b) <= ConservationEpsilon*math.Max(1, math.Abs(a))
}
