// Package exposure defines the exposure model: buildings grouped by cell and
// taxonomy class, split across damage states.
package exposure

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StateLabel formats a damage state index as its label ("D0", "D1", ...)
func StateLabel(state int) string {
	return "D" + strconv.Itoa(state)
}

// ParseStateLabel parses a damage state label back to its index
func ParseStateLabel(label string) (int, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(label), "D")
	state, err := strconv.Atoi(trimmed)
	if err != nil || state < 0 {
		return 0, fmt.Errorf("invalid damage state label %q", label)
	}
	return state, nil
}

// ClassRecord holds the damage-state split of one taxonomy class in a cell.
// Counts are expected building counts, indexed by damage state; they may be
// fractional after repeated hazard passes or schema remapping.
type ClassRecord struct {
	// Counts is the building count per damage state, index 0 = undamaged
	Counts []float64 `json:"counts"`

	// ReplacementCost is the cost to replace a single building
	ReplacementCost decimal.Decimal `json:"replacement_cost"`
}

// Total returns the total building count across all damage states
func (r ClassRecord) Total() float64 {
	var total float64
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// MaxState returns the highest damage state the record can hold
func (r ClassRecord) MaxState() int {
	return len(r.Counts) - 1
}

// HighestPopulatedState returns the most severe state with a nonzero count,
// or 0 for an empty record
func (r ClassRecord) HighestPopulatedState() int {
	for s := len(r.Counts) - 1; s > 0; s-- {
		if r.Counts[s] != 0 {
			return s
		}
	}
	return 0
}

// Clone returns a deep copy of the record
func (r ClassRecord) Clone() ClassRecord {
	counts := make([]float64, len(r.Counts))
	copy(counts, r.Counts)
	return ClassRecord{Counts: counts, ReplacementCost: r.ReplacementCost}
}

// Cell is one location of the exposure model
type Cell struct {
	// ID is an opaque location reference (e.g. a geohash or feature id)
	ID string `json:"id"`

	// Lon and Lat locate the cell centroid for intensity lookup
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`

	// Classes maps taxonomy class names to their damage-state split
	Classes map[string]ClassRecord `json:"classes"`
}

// Clone returns a deep copy of the cell
func (c Cell) Clone() Cell {
	classes := make(map[string]ClassRecord, len(c.Classes))
	for name, rec := range c.Classes {
		classes[name] = rec.Clone()
	}
	return Cell{ID: c.ID, Lon: c.Lon, Lat: c.Lat, Classes: classes}
}

// Taxonomies returns the cell's taxonomy class names in sorted order
func (c Cell) Taxonomies() []string {
	names := make([]string, 0, len(c.Classes))
	for name := range c.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model is a full exposure snapshot. Engine passes never mutate a model in
// place; each pass takes a snapshot and produces a new one.
type Model struct {
	// Schema names the taxonomy schema the class names belong to
	Schema string `json:"schema"`

	// Cells holds all exposure cells
	Cells []Cell `json:"cells"`
}

// Clone returns a deep copy of the model
func (m Model) Clone() Model {
	cells := make([]Cell, len(m.Cells))
	for i, c := range m.Cells {
		cells[i] = c.Clone()
	}
	return Model{Schema: m.Schema, Cells: cells}
}

// TotalBuildings returns the building count summed over all cells and classes
func (m Model) TotalBuildings() float64 {
	var total float64
	for _, cell := range m.Cells {
		for _, rec := range cell.Classes {
			total += rec.Total()
		}
	}
	return total
}

// SameTotal reports whether two counts vectors carry the same total building
// count within eps. Used to assert the conservation law after an update.
func SameTotal(before, after []float64, eps float64) bool {
	var a, b float64
	for _, v := range before {
		a += v
	}
	for _, v := range after {
		b += v
	}
	return math.Abs(a-b) <= eps*math.Max(1, math.Abs(a))
}
