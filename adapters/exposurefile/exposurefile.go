// Package exposurefile reads and writes exposure models in their JSON
// exchange format. The layout mirrors the feature collections upstream
// exposure tools emit: one record per cell with a location reference, a
// centroid, and the per-class damage-state counts.
package exposurefile

import (
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"

	"multirisk/core/exposure"
	"multirisk/internal/errors"
)

type fileFormat struct {
	Schema string     `json:"schema"`
	Cells  []fileCell `json:"cells"`
}

type fileCell struct {
	ID      string      `json:"id"`
	Lon     float64     `json:"lon"`
	Lat     float64     `json:"lat"`
	Classes []fileClass `json:"classes"`
}

type fileClass struct {
	Taxonomy        string             `json:"taxonomy"`
	ReplacementCost decimal.Decimal    `json:"replacement_cost"`
	Counts          map[string]float64 `json:"counts"`
}

// Load reads an exposure model from a JSON file
func Load(path string) (exposure.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return exposure.Model{}, errors.Parsing("reading exposure file", err)
	}
	return Parse(data)
}

// Parse reads an exposure model from JSON bytes
func Parse(data []byte) (exposure.Model, error) {
	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return exposure.Model{}, errors.Parsing("decoding exposure file", err)
	}
	if file.Schema == "" {
		return exposure.Model{}, errors.Input("exposure file names no schema")
	}

	model := exposure.Model{Schema: file.Schema, Cells: make([]exposure.Cell, 0, len(file.Cells))}
	for _, fc := range file.Cells {
		cell := exposure.Cell{ID: fc.ID, Lon: fc.Lon, Lat: fc.Lat, Classes: make(map[string]exposure.ClassRecord, len(fc.Classes))}
		for _, cls := range fc.Classes {
			if cls.Taxonomy == "" {
				return exposure.Model{}, errors.Newf(errors.TypeInput, "cell %q has a class without taxonomy", fc.ID)
			}
			if _, ok := cell.Classes[cls.Taxonomy]; ok {
				return exposure.Model{}, errors.Newf(errors.TypeInput, "cell %q repeats taxonomy %q", fc.ID, cls.Taxonomy)
			}
			rec, err := toRecord(fc.ID, cls)
			if err != nil {
				return exposure.Model{}, err
			}
			cell.Classes[cls.Taxonomy] = rec
		}
		model.Cells = append(model.Cells, cell)
	}
	return model, nil
}

func toRecord(cellID string, cls fileClass) (exposure.ClassRecord, error) {
	maxState := 0
	for label := range cls.Counts {
		state, err := exposure.ParseStateLabel(label)
		if err != nil {
			return exposure.ClassRecord{}, errors.Newf(errors.TypeParsing,
				"cell %q class %q: %v", cellID, cls.Taxonomy, err)
		}
		if state > maxState {
			maxState = state
		}
	}

	counts := make([]float64, maxState+1)
	for label, count := range cls.Counts {
		if count < 0 {
			return exposure.ClassRecord{}, errors.Newf(errors.TypeInput,
				"cell %q class %q has negative count at %s", cellID, cls.Taxonomy, label)
		}
		state, _ := exposure.ParseStateLabel(label)
		counts[state] = count
	}
	return exposure.ClassRecord{Counts: counts, ReplacementCost: cls.ReplacementCost}, nil
}

// Write stores an exposure model as a JSON file, the baseline for a
// subsequent hazard pass
func Write(path string, model exposure.Model) error {
	file := fileFormat{Schema: model.Schema, Cells: make([]fileCell, 0, len(model.Cells))}
	for _, cell := range model.Cells {
		fc := fileCell{ID: cell.ID, Lon: cell.Lon, Lat: cell.Lat}
		for _, taxonomy := range cell.Taxonomies() {
			rec := cell.Classes[taxonomy]
			counts := make(map[string]float64, len(rec.Counts))
			for state, count := range rec.Counts {
				if count != 0 || state == 0 {
					counts[exposure.StateLabel(state)] = count
				}
			}
			fc.Classes = append(fc.Classes, fileClass{
				Taxonomy:        taxonomy,
				ReplacementCost: rec.ReplacementCost,
				Counts:          counts,
			})
		}
		file.Cells = append(file.Cells, fc)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Internal("encoding exposure model", err)
	}
	return os.WriteFile(path, data, 0644)
}
