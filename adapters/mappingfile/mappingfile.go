// Package mappingfile reads schema mapping tables from their JSON exchange
// format. Two file kinds exist, matching the upstream conversion datasets:
// taxonomy files carry the fractional class decomposition, damage-state files
// carry per-class-pair conversion matrices. A table is assembled from one or
// more files of each kind.
package mappingfile

import (
	"encoding/json"
	"os"

	"multirisk/core/exposure"
	"multirisk/core/schema"
	"multirisk/internal/errors"
)

type taxonomyFile struct {
	SourceSchema   string             `json:"source_schema"`
	TargetSchema   string             `json:"target_schema"`
	SourceTaxonomy string             `json:"source_taxonomy"`
	ConvMatrix     map[string]float64 `json:"conv_matrix"`
}

type damageStateFile struct {
	SourceSchema   string               `json:"source_schema"`
	TargetSchema   string               `json:"target_schema"`
	SourceTaxonomy string               `json:"source_taxonomy"`
	TargetTaxonomy string               `json:"target_taxonomy"`
	ConvMatrix     map[string][]float64 `json:"conv_matrix"`
}

// Load assembles a mapping table from taxonomy files and optional
// damage-state files. All files must agree on the schema pair.
func Load(taxonomyPaths, damageStatePaths []string) (*schema.Table, error) {
	if len(taxonomyPaths) == 0 {
		return nil, errors.Input("no taxonomy mapping files given")
	}

	sourceSchema, targetSchema := "", ""
	fractions := make(map[string]map[string]float64)
	for _, path := range taxonomyPaths {
		var file taxonomyFile
		if err := readJSON(path, &file); err != nil {
			return nil, err
		}
		if err := checkSchemaPair(&sourceSchema, &targetSchema, file.SourceSchema, file.TargetSchema, path); err != nil {
			return nil, err
		}
		if _, ok := fractions[file.SourceTaxonomy]; ok {
			return nil, errors.Newf(errors.TypeConfig,
				"taxonomy %q mapped twice (last in %s)", file.SourceTaxonomy, path)
		}
		fractions[file.SourceTaxonomy] = file.ConvMatrix
	}

	states := make(map[schema.ClassPair][][]float64)
	for _, path := range damageStatePaths {
		var file damageStateFile
		if err := readJSON(path, &file); err != nil {
			return nil, err
		}
		if err := checkSchemaPair(&sourceSchema, &targetSchema, file.SourceSchema, file.TargetSchema, path); err != nil {
			return nil, err
		}
		matrix, err := toMatrix(file.ConvMatrix)
		if err != nil {
			return nil, errors.Newf(errors.TypeParsing,
				"damage-state matrix in %s: %v", path, err)
		}
		states[schema.ClassPair{Source: file.SourceTaxonomy, Target: file.TargetTaxonomy}] = matrix
	}

	return schema.NewTable(sourceSchema, targetSchema, fractions, states)
}

// LoadSingle reads a combined mapping file holding several taxonomy and
// damage-state entries, the form scenario files reference.
func LoadSingle(path string) (*schema.Table, error) {
	var file struct {
		Taxonomies   []taxonomyFile    `json:"taxonomies"`
		DamageStates []damageStateFile `json:"damage_states"`
	}
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}

	sourceSchema, targetSchema := "", ""
	fractions := make(map[string]map[string]float64)
	for _, entry := range file.Taxonomies {
		if err := checkSchemaPair(&sourceSchema, &targetSchema, entry.SourceSchema, entry.TargetSchema, path); err != nil {
			return nil, err
		}
		fractions[entry.SourceTaxonomy] = entry.ConvMatrix
	}
	states := make(map[schema.ClassPair][][]float64)
	for _, entry := range file.DamageStates {
		if err := checkSchemaPair(&sourceSchema, &targetSchema, entry.SourceSchema, entry.TargetSchema, path); err != nil {
			return nil, err
		}
		matrix, err := toMatrix(entry.ConvMatrix)
		if err != nil {
			return nil, errors.Newf(errors.TypeParsing, "damage-state matrix in %s: %v", path, err)
		}
		states[schema.ClassPair{Source: entry.SourceTaxonomy, Target: entry.TargetTaxonomy}] = matrix
	}
	return schema.NewTable(sourceSchema, targetSchema, fractions, states)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Parsing("reading mapping file", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Parsing("decoding mapping file "+path, err)
	}
	return nil
}

func checkSchemaPair(source, target *string, fileSource, fileTarget, path string) error {
	if *source == "" {
		*source, *target = fileSource, fileTarget
		return nil
	}
	if *source != fileSource || *target != fileTarget {
		return errors.Newf(errors.TypeConfig,
			"mapping file %s converts %s -> %s, expected %s -> %s",
			path, fileSource, fileTarget, *source, *target)
	}
	return nil
}

// toMatrix converts the {"D0": [..], "D1": [..]} row map, keyed by target
// state with one column per source state, into a dense matrix.
func toMatrix(rows map[string][]float64) ([][]float64, error) {
	matrix := make([][]float64, len(rows))
	for label, row := range rows {
		state, err := exposure.ParseStateLabel(label)
		if err != nil {
			return nil, errors.Parsing("damage state label", err)
		}
		if state >= len(matrix) {
			return nil, errors.Newf(errors.TypeParsing, "target state %s out of range", label)
		}
		matrix[state] = row
	}
	for state, row := range matrix {
		if row == nil {
			return nil, errors.Newf(errors.TypeParsing, "target state D%d missing", state)
		}
	}
	return matrix, nil
}
