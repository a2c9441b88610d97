package exposurefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"multirisk/core/exposure"
)

const sampleJSON = `{
  "schema": "SARA_v1.0",
  "cells": [
    {"id": "c1", "lon": -71.5, "lat": -32.8, "classes": [
      {"taxonomy": "URM1", "replacement_cost": 1000,
       "counts": {"D0": 90, "D2": 10}},
      {"taxonomy": "W1", "replacement_cost": 750.50,
       "counts": {"D0": 40}}
    ]}
  ]
}`

func TestParseSampleModel(t *testing.T) {
	model, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if model.Schema != "SARA_v1.0" {
		t.Errorf("schema = %q, want SARA_v1.0", model.Schema)
	}
	if len(model.Cells) != 1 {
		t.Fatalf("cells = %d, want 1", len(model.Cells))
	}

	urm := model.Cells[0].Classes["URM1"]
	if diff := cmp.Diff([]float64{90, 0, 10}, urm.Counts); diff != "" {
		t.Errorf("URM1 counts mismatch (-want +got):\n%s", diff)
	}
	if urm.ReplacementCost.String() != "1000" {
		t.Errorf("URM1 cost = %s, want 1000", urm.ReplacementCost)
	}
	w1 := model.Cells[0].Classes["W1"]
	if w1.ReplacementCost.String() != "750.5" {
		t.Errorf("W1 cost = %s, want 750.5", w1.ReplacementCost)
	}
}

func TestParseRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing schema", `{"cells": []}`},
		{"negative count", `{"schema": "S", "cells": [
          {"id": "c1", "classes": [{"taxonomy": "URM1", "counts": {"D0": -1}}]}]}`},
		{"duplicate taxonomy", `{"schema": "S", "cells": [
          {"id": "c1", "classes": [
            {"taxonomy": "URM1", "counts": {"D0": 1}},
            {"taxonomy": "URM1", "counts": {"D0": 2}}]}]}`},
		{"bad state label", `{"schema": "S", "cells": [
          {"id": "c1", "classes": [{"taxonomy": "URM1", "counts": {"X9": 1}}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.json)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	model, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exposure.json")
	if err := Write(path, model); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := cmp.Comparer(func(a, b exposure.ClassRecord) bool {
		if !a.ReplacementCost.Equal(b.ReplacementCost) {
			return false
		}
		if len(a.Counts) != len(b.Counts) {
			return false
		}
		for i := range a.Counts {
			if a.Counts[i] != b.Counts[i] {
				return false
			}
		}
		return true
	})
	if diff := cmp.Diff(model, loaded, opts); diff != "" {
		t.Errorf("round trip mismatch (-written +loaded):\n%s", diff)
	}
}

func TestWriteOmitsEmptyStates(t *testing.T) {
	model := exposure.Model{
		Schema: "S",
		Cells: []exposure.Cell{{
			ID: "c1",
			Classes: map[string]exposure.ClassRecord{
				"URM1": {Counts: []float64{0, 0, 5}},
			},
		}},
	}

	path := filepath.Join(t.TempDir(), "exposure.json")
	if err := Write(path, model); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding written file: %v", err)
	}
	counts := decoded["cells"].([]any)[0].(map[string]any)["classes"].([]any)[0].(map[string]any)["counts"].(map[string]any)
	if _, ok := counts["D1"]; ok {
		t.Error("zero count D1 should be omitted")
	}
	if _, ok := counts["D0"]; !ok {
		t.Error("D0 must always be written")
	}
	if counts["D2"] != 5.0 {
		t.Errorf("D2 = %v, want 5", counts["D2"])
	}
}
