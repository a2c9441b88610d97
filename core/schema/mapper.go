// Package schema reconciles taxonomy schemas: when the exposure model and the
// fragility functions classify buildings differently, building counts are
// redistributed across the target schema's classes by a data-driven
// conversion table. Mapping is pure data; no schema is special-cased in code.
package schema

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"multirisk/core/exposure"
	"multirisk/internal/errors"
)

const fractionTolerance = 1e-6

// ClassPair keys a damage-state conversion matrix
type ClassPair struct {
	Source string
	Target string
}

// Table is the conversion table between two taxonomy schemas
type Table struct {
	// SourceSchema and TargetSchema name the schemas the table converts between
	SourceSchema string
	TargetSchema string

	// Fractions decomposes each source class into target classes.
	// Each row sums to 1: the buildings of a source class are fully accounted for.
	Fractions map[string]map[string]float64

	// States holds optional damage-state conversion matrices per class pair,
	// States[pair][targetState][sourceState]. Columns sum to 1. Pairs without
	// a matrix keep their damage states unchanged.
	States map[ClassPair][][]float64
}

// NewTable validates and returns a conversion table
func NewTable(sourceSchema, targetSchema string, fractions map[string]map[string]float64, states map[ClassPair][][]float64) (*Table, error) {
	if sourceSchema == targetSchema {
		return nil, errors.Config("schema mapping table maps a schema onto itself")
	}
	for source, row := range fractions {
		var sum float64
		for target, f := range row {
			if f < 0 {
				return nil, errors.Newf(errors.TypeConfig,
					"negative mapping fraction %s -> %s", source, target)
			}
			sum += f
		}
		if math.Abs(sum-1) > fractionTolerance {
			return nil, errors.Newf(errors.TypeConfig,
				"mapping fractions for class %q sum to %g, want 1", source, sum)
		}
	}
	for pair, matrix := range states {
		if len(matrix) == 0 {
			return nil, errors.Newf(errors.TypeConfig,
				"empty damage-state matrix for %s -> %s", pair.Source, pair.Target)
		}
		cols := len(matrix[0])
		for _, row := range matrix {
			if len(row) != cols {
				return nil, errors.Newf(errors.TypeConfig,
					"ragged damage-state matrix for %s -> %s", pair.Source, pair.Target)
			}
		}
		for c := 0; c < cols; c++ {
			var sum float64
			for r := range matrix {
				if matrix[r][c] < 0 {
					return nil, errors.Newf(errors.TypeConfig,
						"negative damage-state fraction for %s -> %s", pair.Source, pair.Target)
				}
				sum += matrix[r][c]
			}
			if math.Abs(sum-1) > fractionTolerance {
				return nil, errors.Newf(errors.TypeConfig,
					"damage-state matrix column D%d for %s -> %s sums to %g, want 1",
					c, pair.Source, pair.Target, sum)
			}
		}
	}
	return &Table{
		SourceSchema: sourceSchema,
		TargetSchema: targetSchema,
		Fractions:    fractions,
		States:       states,
	}, nil
}

// Remap converts an exposure model into the table's target schema. Every
// source class's building count, and its existing per-damage-state split, is
// redistributed proportionally; the total per source class is preserved.
// A source class without a table row fails with an UNMAPPABLE_CLASS error.
func (t *Table) Remap(model exposure.Model) (exposure.Model, error) {
	if model.Schema == t.TargetSchema {
		return model.Clone(), nil
	}
	if model.Schema != t.SourceSchema {
		return exposure.Model{}, errors.Newf(errors.TypeConfig,
			"mapping table converts %q, exposure uses schema %q", t.SourceSchema, model.Schema)
	}

	out := exposure.Model{Schema: t.TargetSchema, Cells: make([]exposure.Cell, len(model.Cells))}
	for i, cell := range model.Cells {
		mapped, err := t.remapCell(cell)
		if err != nil {
			return exposure.Model{}, err
		}
		out.Cells[i] = mapped
	}
	return out, nil
}

func (t *Table) remapCell(cell exposure.Cell) (exposure.Cell, error) {
	out := exposure.Cell{ID: cell.ID, Lon: cell.Lon, Lat: cell.Lat, Classes: make(map[string]exposure.ClassRecord)}

	// accumulate cost weighted by contributed buildings; target classes fed by
	// several source classes get the count-weighted mean replacement cost
	costWeight := make(map[string]decimal.Decimal)
	countWeight := make(map[string]float64)

	for _, source := range cell.Taxonomies() {
		rec := cell.Classes[source]
		row, ok := t.Fractions[source]
		if !ok {
			return exposure.Cell{}, errors.UnmappableClass(source, t.TargetSchema).
				WithContext("cell", cell.ID)
		}

		targets := make([]string, 0, len(row))
		for target := range row {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			fraction := row[target]
			if fraction == 0 {
				continue
			}
			counts, err := t.convertStates(source, target, rec.Counts, fraction)
			if err != nil {
				return exposure.Cell{}, err
			}

			existing, ok := out.Classes[target]
			if !ok {
				existing = exposure.ClassRecord{Counts: make([]float64, len(counts))}
			}
			if len(existing.Counts) < len(counts) {
				grown := make([]float64, len(counts))
				copy(grown, existing.Counts)
				existing.Counts = grown
			}
			for s, c := range counts {
				existing.Counts[s] += c
			}
			out.Classes[target] = existing

			share := rec.Total() * fraction
			countWeight[target] += share
			costWeight[target] = costWeight[target].Add(rec.ReplacementCost.Mul(decimal.NewFromFloat(share)))
		}
	}

	for target, rec := range out.Classes {
		if w := countWeight[target]; w > 0 {
			rec.ReplacementCost = costWeight[target].Div(decimal.NewFromFloat(w))
			out.Classes[target] = rec
		}
	}
	return out, nil
}

func (t *Table) convertStates(source, target string, counts []float64, fraction float64) ([]float64, error) {
	matrix, ok := t.States[ClassPair{Source: source, Target: target}]
	if !ok {
		scaled := make([]float64, len(counts))
		for s, c := range counts {
			scaled[s] = c * fraction
		}
		return scaled, nil
	}

	out := make([]float64, len(matrix))
	for sourceState, c := range counts {
		if c == 0 {
			continue
		}
		if sourceState >= len(matrix[0]) {
			return nil, errors.InconsistentDamageStates(source, sourceState+1, len(matrix[0]))
		}
		for targetState := range matrix {
			out[targetState] += c * fraction * matrix[targetState][sourceState]
		}
	}
	return out, nil
}
