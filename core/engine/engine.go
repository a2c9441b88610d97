// Package engine orchestrates one hazard pass: schema reconciliation, the
// per-cell damage and loss computation, and the commutative reduction into a
// scenario summary. A pass is a pure snapshot-in/snapshot-out transformation;
// the caller threads the output exposure into the next hazard's input.
package engine

import (
	"context"
	"runtime"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"multirisk/core/aggregate"
	"multirisk/core/damage"
	"multirisk/core/exposure"
	"multirisk/core/fragility"
	"multirisk/core/intensity"
	"multirisk/core/loss"
	"multirisk/core/schema"
	"multirisk/internal/errors"
	"multirisk/internal/logging"
)

// PassInput collects the fully resolved inputs of one hazard pass
type PassInput struct {
	// Hazard labels the pass (earthquake, tsunami, ashfall, lahar)
	Hazard string

	// Exposure is the current exposure snapshot; it is never mutated
	Exposure exposure.Model

	// Intensity resolves hazard intensities at cell locations
	Intensity intensity.Provider

	// Fragility holds the limit-state curves per taxonomy class
	Fragility *fragility.Set

	// Mapping converts the exposure schema into the fragility schema.
	// Required only when the two differ; ignored when they match.
	Mapping *schema.Table

	// Loss prices damage-state distributions; nil skips loss computation
	Loss *loss.RatioSet

	// Workers bounds the parallel cell computations; <= 0 uses NumCPU
	Workers int
}

// PassResult is the outcome of one hazard pass
type PassResult struct {
	// Exposure is the updated snapshot, the baseline for the next pass
	Exposure exposure.Model

	// Cells holds the individually inspectable per-cell results
	Cells []aggregate.CellResult

	// Summary is the merged scenario-wide aggregate
	Summary *aggregate.Summary
}

// Run executes one hazard pass. Per-cell computations only read shared state
// (fragility set, mapping table, intensity provider), so cells run on a
// bounded worker pool and the partial results merge commutatively afterwards.
// Any per-class failure aborts the pass: a partial result would silently
// undercount, which is worse than a hard failure.
func Run(ctx context.Context, in PassInput) (*PassResult, error) {
	log := logging.With(zap.String("hazard", in.Hazard))

	current := in.Exposure
	if current.Schema != in.Fragility.Schema {
		if in.Mapping == nil {
			return nil, errors.Newf(errors.TypeConfig,
				"exposure schema %q differs from fragility schema %q and no mapping table is given",
				current.Schema, in.Fragility.Schema)
		}
		remapped, err := in.Mapping.Remap(current)
		if err != nil {
			return nil, err
		}
		log.Info("exposure remapped",
			zap.String("from", current.Schema),
			zap.String("to", remapped.Schema))
		current = remapped
	}

	workers := in.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	currency := ""
	if in.Loss != nil {
		currency = in.Loss.Currency
	}

	updated := make([]exposure.Cell, len(current.Cells))
	results := make([]aggregate.CellResult, len(current.Cells))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range current.Cells {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cell, res, err := updateCell(current.Cells[i], in.Intensity, in.Fragility, in.Loss)
			if err != nil {
				return err
			}
			updated[i] = cell
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := aggregate.NewSummary(currency)
	for _, res := range results {
		summary.AddCell(res)
	}

	log.Info("hazard pass complete",
		zap.Int("cells", len(updated)),
		zap.Int("transition_tallies", len(summary.Transitions)),
		zap.String("total_loss", summary.TotalLoss.String()))

	return &PassResult{
		Exposure: exposure.Model{Schema: current.Schema, Cells: updated},
		Cells:    results,
		Summary:  summary,
	}, nil
}

// updateCell computes the new damage-state split and loss of a single cell.
// Reads only shared immutable inputs, so it is safe to run concurrently.
func updateCell(cell exposure.Cell, provider intensity.Provider, set *fragility.Set, ratios *loss.RatioSet) (exposure.Cell, aggregate.CellResult, error) {
	values, units, err := provider.Nearest(cell.Lon, cell.Lat)
	if err != nil {
		return exposure.Cell{}, aggregate.CellResult{}, errors.Wrapf(errors.TypeInput, err,
			"intensity lookup failed for cell %q", cell.ID)
	}

	out := exposure.Cell{ID: cell.ID, Lon: cell.Lon, Lat: cell.Lat, Classes: make(map[string]exposure.ClassRecord, len(cell.Classes))}
	result := aggregate.CellResult{
		CellID:      cell.ID,
		LossByClass: make(map[string]decimal.Decimal),
		Loss:        decimal.Zero,
	}

	for _, taxonomy := range cell.Taxonomies() {
		rec := cell.Classes[taxonomy]

		fns, err := set.ForTaxonomy(taxonomy)
		if err != nil {
			return exposure.Cell{}, aggregate.CellResult{}, err
		}

		counts := rec.Counts
		// composite fragility models carry one function per measure type;
		// each is evaluated independently on the accumulated split
		for _, fn := range fns {
			x, ok := values[fn.IMT]
			if !ok {
				return exposure.Cell{}, aggregate.CellResult{}, errors.MissingIntensity(cell.ID, fn.IMT)
			}
			if unit, ok := units[fn.IMT]; ok && fn.Unit != "" && !strings.EqualFold(unit, fn.Unit) {
				return exposure.Cell{}, aggregate.CellResult{}, errors.Newf(errors.TypeInput,
					"intensity %s at cell %q is in %q, fragility for %q expects %q",
					fn.IMT, cell.ID, unit, taxonomy, fn.Unit)
			}

			res, err := damage.Update(cell.ID, taxonomy, counts, fn, x)
			if err != nil {
				return exposure.Cell{}, aggregate.CellResult{}, err
			}
			counts = res.Counts
			result.Transitions = append(result.Transitions, res.Transitions...)
		}

		out.Classes[taxonomy] = exposure.ClassRecord{Counts: counts, ReplacementCost: rec.ReplacementCost}

		if ratios != nil {
			classLoss, err := ratios.Compute(taxonomy, counts, rec.ReplacementCost)
			if err != nil {
				return exposure.Cell{}, aggregate.CellResult{}, err
			}
			result.LossByClass[taxonomy] = classLoss
			result.Loss = result.Loss.Add(classLoss)
		}
	}
	return out, result, nil
}
