package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"multirisk/core/damage"
)

func cellA() CellResult {
	return CellResult{
		CellID: "a",
		Transitions: []damage.Transition{
			{CellID: "a", Taxonomy: "URM1", From: 0, To: 1, Buildings: 40},
			{CellID: "a", Taxonomy: "URM1", From: 0, To: 2, Buildings: 10},
		},
		LossByClass: map[string]decimal.Decimal{"URM1": decimal.NewFromInt(22000)},
		Loss:        decimal.NewFromInt(22000),
	}
}

func cellB() CellResult {
	return CellResult{
		CellID: "b",
		Transitions: []damage.Transition{
			{CellID: "b", Taxonomy: "URM1", From: 0, To: 1, Buildings: 5},
			{CellID: "b", Taxonomy: "W1", From: 1, To: 2, Buildings: 3},
		},
		LossByClass: map[string]decimal.Decimal{
			"URM1": decimal.NewFromInt(1500),
			"W1":   decimal.NewFromInt(3000),
		},
		Loss: decimal.NewFromInt(4500),
	}
}

func TestAddCellTalliesTransitionsAndLoss(t *testing.T) {
	s := NewSummary("USD")
	s.AddCell(cellA())
	s.AddCell(cellB())

	if s.Cells != 2 {
		t.Errorf("Cells = %d, want 2", s.Cells)
	}
	if got := s.Transitions[TransitionKey{Taxonomy: "URM1", From: 0, To: 1}]; got != 45 {
		t.Errorf("URM1 0->1 tally = %g, want 45", got)
	}
	if got := s.Transitions[TransitionKey{Taxonomy: "W1", From: 1, To: 2}]; got != 3 {
		t.Errorf("W1 1->2 tally = %g, want 3", got)
	}
	if !s.TotalLoss.Equal(decimal.NewFromInt(26500)) {
		t.Errorf("TotalLoss = %s, want 26500", s.TotalLoss)
	}
	if !s.LossByClass["URM1"].Equal(decimal.NewFromInt(23500)) {
		t.Errorf("URM1 loss = %s, want 23500", s.LossByClass["URM1"])
	}
}

func TestMergeOrderDoesNotMatter(t *testing.T) {
	left := NewSummary("USD")
	left.AddCell(cellA())
	right := NewSummary("USD")
	right.AddCell(cellB())

	ab := NewSummary("USD")
	ab.Merge(left)
	ab.Merge(right)

	ba := NewSummary("USD")
	ba.Merge(right)
	ba.Merge(left)

	if diff := cmp.Diff(ab, ba); diff != "" {
		t.Errorf("merge order changed totals (-ab +ba):\n%s", diff)
	}

	sequential := NewSummary("USD")
	sequential.AddCell(cellA())
	sequential.AddCell(cellB())
	if diff := cmp.Diff(sequential, ab); diff != "" {
		t.Errorf("merged batches differ from sequential adds (-sequential +merged):\n%s", diff)
	}
}

func TestMergeNilIsANoOp(t *testing.T) {
	s := NewSummary("USD")
	s.AddCell(cellA())
	s.Merge(nil)
	if s.Cells != 1 {
		t.Errorf("Cells = %d, want 1", s.Cells)
	}
}

func TestSummaryJSONCarriesPerClassDetail(t *testing.T) {
	s := NewSummary("USD")
	s.AddCell(cellB())
	s.AddCell(cellA())

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Currency    string `json:"currency"`
		Transitions []struct {
			Taxonomy  string  `json:"taxonomy"`
			From      int     `json:"from"`
			To        int     `json:"to"`
			Buildings float64 `json:"buildings"`
		} `json:"transitions"`
		LossByClass []struct {
			Taxonomy string `json:"taxonomy"`
			Loss     string `json:"loss"`
		} `json:"loss_by_class"`
		TotalLoss string `json:"total_loss"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(decoded.Transitions) != 3 {
		t.Fatalf("transitions = %d entries, want 3: %s", len(decoded.Transitions), data)
	}
	first := decoded.Transitions[0]
	if first.Taxonomy != "URM1" || first.From != 0 || first.To != 1 || first.Buildings != 45 {
		t.Errorf("first transition = %+v, want URM1 0->1 with 45 buildings", first)
	}
	if len(decoded.LossByClass) != 2 {
		t.Fatalf("loss_by_class = %d entries, want 2: %s", len(decoded.LossByClass), data)
	}
	if decoded.LossByClass[0].Taxonomy != "URM1" || decoded.LossByClass[0].Loss != "23500" {
		t.Errorf("first class loss = %+v, want URM1 at 23500", decoded.LossByClass[0])
	}
	if decoded.TotalLoss != "26500" {
		t.Errorf("total_loss = %q, want 26500", decoded.TotalLoss)
	}
}

func TestStableOrderings(t *testing.T) {
	s := NewSummary("USD")
	s.AddCell(cellB())
	s.AddCell(cellA())

	keys := s.TransitionKeys()
	want := []TransitionKey{
		{Taxonomy: "URM1", From: 0, To: 1},
		{Taxonomy: "URM1", From: 0, To: 2},
		{Taxonomy: "W1", From: 1, To: 2},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("TransitionKeys mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"URM1", "W1"}, s.Classes()); diff != "" {
		t.Errorf("Classes mismatch (-want +got):\n%s", diff)
	}
}
