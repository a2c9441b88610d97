// Package aggregate accumulates per-cell damage and loss results into
// scenario-wide totals. Merging is associative and commutative, so cells can
// be processed in any order or in parallel batches with identical totals.
package aggregate

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"multirisk/core/damage"
)

// TransitionKey identifies a transition tally across cells
type TransitionKey struct {
	Taxonomy string `json:"taxonomy"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// CellResult is the per-cell outcome of one hazard pass. It stays inspectable
// alongside the merged summary.
type CellResult struct {
	// CellID identifies the exposure cell
	CellID string `json:"cell_id"`

	// Transitions lists the cell's damage-state transitions
	Transitions []damage.Transition `json:"transitions,omitempty"`

	// LossByClass is the cell's loss per taxonomy class
	LossByClass map[string]decimal.Decimal `json:"loss_by_class,omitempty"`

	// Loss is the cell's total loss
	Loss decimal.Decimal `json:"loss"`
}

// Summary is the running aggregate over cells
type Summary struct {
	// Currency is the unit of all loss figures
	Currency string `json:"currency"`

	// Cells is the number of cells merged in
	Cells int `json:"cells"`

	// Transitions tallies buildings per (taxonomy, from, to)
	Transitions map[TransitionKey]float64

	// LossByClass totals loss per taxonomy class
	LossByClass map[string]decimal.Decimal

	// TotalLoss is the grand total loss
	TotalLoss decimal.Decimal `json:"total_loss"`
}

// NewSummary creates an empty summary
func NewSummary(currency string) *Summary {
	return &Summary{
		Currency:    currency,
		Transitions: make(map[TransitionKey]float64),
		LossByClass: make(map[string]decimal.Decimal),
		TotalLoss:   decimal.Zero,
	}
}

// AddCell folds one cell result into the summary
func (s *Summary) AddCell(res CellResult) {
	s.Cells++
	for _, tr := range res.Transitions {
		key := TransitionKey{Taxonomy: tr.Taxonomy, From: tr.From, To: tr.To}
		s.Transitions[key] += tr.Buildings
	}
	for class, loss := range res.LossByClass {
		s.LossByClass[class] = s.LossByClass[class].Add(loss)
	}
	s.TotalLoss = s.TotalLoss.Add(res.Loss)
}

// Merge folds another summary into this one. Addition over tallies and
// decimal losses keeps the operation associative and commutative.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	s.Cells += other.Cells
	for key, buildings := range other.Transitions {
		s.Transitions[key] += buildings
	}
	for class, loss := range other.LossByClass {
		s.LossByClass[class] = s.LossByClass[class].Add(loss)
	}
	s.TotalLoss = s.TotalLoss.Add(other.TotalLoss)
}

type transitionTally struct {
	Taxonomy  string  `json:"taxonomy"`
	From      int     `json:"from"`
	To        int     `json:"to"`
	Buildings float64 `json:"buildings"`
}

type classLoss struct {
	Taxonomy string          `json:"taxonomy"`
	Loss     decimal.Decimal `json:"loss"`
}

// MarshalJSON renders the tally maps as sorted slices, so the machine-readable
// report carries the same per-class detail as the text report.
func (s Summary) MarshalJSON() ([]byte, error) {
	tallies := make([]transitionTally, 0, len(s.Transitions))
	for _, key := range s.TransitionKeys() {
		tallies = append(tallies, transitionTally{
			Taxonomy:  key.Taxonomy,
			From:      key.From,
			To:        key.To,
			Buildings: s.Transitions[key],
		})
	}
	losses := make([]classLoss, 0, len(s.LossByClass))
	for _, class := range s.Classes() {
		losses = append(losses, classLoss{Taxonomy: class, Loss: s.LossByClass[class]})
	}
	return json.Marshal(struct {
		Currency    string            `json:"currency"`
		Cells       int               `json:"cells"`
		Transitions []transitionTally `json:"transitions,omitempty"`
		LossByClass []classLoss       `json:"loss_by_class,omitempty"`
		TotalLoss   decimal.Decimal   `json:"total_loss"`
	}{s.Currency, s.Cells, tallies, losses, s.TotalLoss})
}

// TransitionKeys returns the tallied transition keys in stable order
func (s *Summary) TransitionKeys() []TransitionKey {
	keys := make([]TransitionKey, 0, len(s.Transitions))
	for key := range s.Transitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Taxonomy != keys[j].Taxonomy {
			return keys[i].Taxonomy < keys[j].Taxonomy
		}
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})
	return keys
}

// Classes returns the taxonomy classes with tallied losses in stable order
func (s *Summary) Classes() []string {
	classes := make([]string, 0, len(s.LossByClass))
	for class := range s.LossByClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
