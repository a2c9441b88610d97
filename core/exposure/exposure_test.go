package exposure

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStateLabels(t *testing.T) {
	if got := StateLabel(3); got != "D3" {
		t.Errorf("StateLabel(3) = %q, want D3", got)
	}

	cases := []struct {
		label string
		state int
		ok    bool
	}{
		{"D0", 0, true},
		{"D4", 4, true},
		{"d2", 2, true},
		{"D-1", 0, false},
		{"X1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		state, err := ParseStateLabel(tc.label)
		if (err == nil) != tc.ok || state != tc.state {
			t.Errorf("ParseStateLabel(%q) = (%d, %v), want (%d, ok=%v)", tc.label, state, err, tc.state, tc.ok)
		}
	}
}

func TestClassRecordAccessors(t *testing.T) {
	rec := ClassRecord{Counts: []float64{90, 0, 10, 0}}
	if got := rec.Total(); got != 100 {
		t.Errorf("Total = %g, want 100", got)
	}
	if got := rec.MaxState(); got != 3 {
		t.Errorf("MaxState = %d, want 3", got)
	}
	if got := rec.HighestPopulatedState(); got != 2 {
		t.Errorf("HighestPopulatedState = %d, want 2", got)
	}
	if got := (ClassRecord{Counts: []float64{5}}).HighestPopulatedState(); got != 0 {
		t.Errorf("HighestPopulatedState of pristine record = %d, want 0", got)
	}
}

func TestModelCloneIsDeep(t *testing.T) {
	model := Model{
		Schema: "SARA_v1.0",
		Cells: []Cell{{
			ID: "c1",
			Classes: map[string]ClassRecord{
				"URM1": {Counts: []float64{100}, ReplacementCost: decimal.NewFromInt(1000)},
			},
		}},
	}

	clone := model.Clone()
	clone.Cells[0].Classes["URM1"].Counts[0] = 0
	clone.Cells[0].Classes["W1"] = ClassRecord{Counts: []float64{1}}

	if model.Cells[0].Classes["URM1"].Counts[0] != 100 {
		t.Error("clone shares count storage with the original")
	}
	if len(model.Cells[0].Classes) != 1 {
		t.Error("clone shares the class map with the original")
	}
}

func TestSameTotal(t *testing.T) {
	if !SameTotal([]float64{90, 10}, []float64{50, 30, 20}, 1e-9) {
		t.Error("equal totals reported as different")
	}
	if SameTotal([]float64{100}, []float64{99}, 1e-9) {
		t.Error("lost buildings reported as conserved")
	}
	// tolerance scales with the total
	if !SameTotal([]float64{1e12}, []float64{1e12 + 0.1}, 1e-9) {
		t.Error("relative tolerance not applied to large totals")
	}
}
