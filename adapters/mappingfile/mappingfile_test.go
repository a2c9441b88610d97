package mappingfile

import (
	"os"
	"path/filepath"
	"testing"

	"multirisk/core/schema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadAssemblesTable(t *testing.T) {
	dir := t.TempDir()
	tax := writeFile(t, dir, "urm1.json", `{
      "source_schema": "SARA_v1.0",
      "target_schema": "SUPPASRI2013_v2.0",
      "source_taxonomy": "URM1",
      "conv_matrix": {"MIX": 0.75, "BRI": 0.25}
    }`)
	ds := writeFile(t, dir, "urm1_mix.json", `{
      "source_schema": "SARA_v1.0",
      "target_schema": "SUPPASRI2013_v2.0",
      "source_taxonomy": "URM1",
      "target_taxonomy": "MIX",
      "conv_matrix": {"D0": [1, 0], "D1": [0, 0.5], "D2": [0, 0.5]}
    }`)

	table, err := Load([]string{tax}, []string{ds})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.SourceSchema != "SARA_v1.0" || table.TargetSchema != "SUPPASRI2013_v2.0" {
		t.Errorf("schema pair = %s -> %s", table.SourceSchema, table.TargetSchema)
	}
	if got := table.Fractions["URM1"]["MIX"]; got != 0.75 {
		t.Errorf("URM1 -> MIX fraction = %g, want 0.75", got)
	}
	matrix := table.States[schema.ClassPair{Source: "URM1", Target: "MIX"}]
	if len(matrix) != 3 || matrix[2][1] != 0.5 {
		t.Errorf("damage-state matrix = %v", matrix)
	}
}

func TestLoadRejectsMixedSchemaPairs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{
      "source_schema": "SARA_v1.0", "target_schema": "X",
      "source_taxonomy": "URM1", "conv_matrix": {"MIX": 1}
    }`)
	b := writeFile(t, dir, "b.json", `{
      "source_schema": "HAZUS_v5", "target_schema": "X",
      "source_taxonomy": "W1", "conv_matrix": {"MIX": 1}
    }`)

	if _, err := Load([]string{a, b}, nil); err == nil {
		t.Fatal("expected error for files with different schema pairs")
	}
}

func TestLoadRejectsDuplicateTaxonomy(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{
      "source_schema": "SARA_v1.0", "target_schema": "X",
      "source_taxonomy": "URM1", "conv_matrix": {"MIX": 1}
    }`)
	b := writeFile(t, dir, "b.json", `{
      "source_schema": "SARA_v1.0", "target_schema": "X",
      "source_taxonomy": "URM1", "conv_matrix": {"BRI": 1}
    }`)

	if _, err := Load([]string{a, b}, nil); err == nil {
		t.Fatal("expected error for taxonomy mapped twice")
	}
}

func TestLoadSingleCombinedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mapping.json", `{
      "taxonomies": [
        {"source_schema": "SARA_v1.0", "target_schema": "SUPPASRI2013_v2.0",
         "source_taxonomy": "URM1", "conv_matrix": {"MIX": 1}},
        {"source_schema": "SARA_v1.0", "target_schema": "SUPPASRI2013_v2.0",
         "source_taxonomy": "W1", "conv_matrix": {"WOO": 1}}
      ],
      "damage_states": [
        {"source_schema": "SARA_v1.0", "target_schema": "SUPPASRI2013_v2.0",
         "source_taxonomy": "URM1", "target_taxonomy": "MIX",
         "conv_matrix": {"D0": [1], "D1": [0]}}
      ]
    }`)

	table, err := LoadSingle(path)
	if err != nil {
		t.Fatalf("LoadSingle failed: %v", err)
	}
	if len(table.Fractions) != 2 {
		t.Errorf("fractions = %d entries, want 2", len(table.Fractions))
	}
	if len(table.States) != 1 {
		t.Errorf("states = %d entries, want 1", len(table.States))
	}
}

func TestLoadRejectsGappyStateMatrix(t *testing.T) {
	dir := t.TempDir()
	tax := writeFile(t, dir, "a.json", `{
      "source_schema": "SARA_v1.0", "target_schema": "X",
      "source_taxonomy": "URM1", "conv_matrix": {"MIX": 1}
    }`)
	ds := writeFile(t, dir, "ds.json", `{
      "source_schema": "SARA_v1.0", "target_schema": "X",
      "source_taxonomy": "URM1", "target_taxonomy": "MIX",
      "conv_matrix": {"D0": [1], "D2": [0]}
    }`)

	if _, err := Load([]string{tax}, []string{ds}); err == nil {
		t.Fatal("expected error for matrix with a missing target state")
	}
}
