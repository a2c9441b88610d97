// Package loss converts damage-state distributions into monetary loss.
package loss

import (
	"github.com/shopspring/decimal"

	"multirisk/internal/errors"
)

// RatioSet holds the loss ratios of one taxonomy schema: the fraction of a
// building's replacement cost lost at each damage state, from 0.0 (no damage)
// to 1.0 (total loss).
type RatioSet struct {
	// Schema names the taxonomy schema the ratios apply to
	Schema string `yaml:"schema"`

	// Currency is the unit of the resulting loss figures
	Currency string `yaml:"currency"`

	// ByState is the default loss ratio per damage state
	ByState []float64 `yaml:"by_state"`

	// ByTaxonomy overrides the default ratios for specific classes
	ByTaxonomy map[string][]float64 `yaml:"by_taxonomy,omitempty"`
}

// Validate checks that every ratio sequence starts at 0, stays within [0, 1]
// and is non-decreasing in damage severity
func (r *RatioSet) Validate() error {
	if err := validateRatios(r.Schema, r.ByState); err != nil {
		return err
	}
	for taxonomy, ratios := range r.ByTaxonomy {
		if err := validateRatios(r.Schema+"/"+taxonomy, ratios); err != nil {
			return err
		}
	}
	return nil
}

func validateRatios(name string, ratios []float64) error {
	if len(ratios) == 0 {
		return errors.Newf(errors.TypeConfig, "loss ratios for %q are empty", name)
	}
	if ratios[0] != 0 {
		return errors.Newf(errors.TypeConfig, "loss ratio at damage state D0 for %q must be 0", name)
	}
	prev := 0.0
	for state, ratio := range ratios {
		if ratio < 0 || ratio > 1 {
			return errors.Newf(errors.TypeConfig, "loss ratio %g at D%d for %q outside [0,1]", ratio, state, name)
		}
		if ratio < prev {
			return errors.Newf(errors.TypeConfig, "loss ratios for %q decrease at D%d", name, state)
		}
		prev = ratio
	}
	return nil
}

// Ratio returns the loss ratio for a damage state of a taxonomy class.
// A populated state without a ratio is fatal: silently pricing it at zero
// would understate the loss.
func (r *RatioSet) Ratio(taxonomy string, state int) (float64, error) {
	ratios := r.ByState
	if override, ok := r.ByTaxonomy[taxonomy]; ok {
		ratios = override
	}
	if state < 0 || state >= len(ratios) {
		return 0, errors.MissingLossRatio(r.Schema, state).WithContext("taxonomy", taxonomy)
	}
	return ratios[state], nil
}

// Compute returns the monetary loss of a damage-state split:
// sum over states of count * ratio * replacement cost. The result is
// non-negative and never exceeds total count * replacement cost.
func (r *RatioSet) Compute(taxonomy string, counts []float64, replacementCost decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for state, count := range counts {
		if count == 0 {
			continue
		}
		ratio, err := r.Ratio(taxonomy, state)
		if err != nil {
			return decimal.Zero, err
		}
		if ratio == 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(count).
			Mul(decimal.NewFromFloat(ratio)).
			Mul(replacementCost))
	}
	return total, nil
}
