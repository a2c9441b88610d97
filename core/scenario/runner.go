package scenario

import (
	"context"

	"go.uber.org/zap"

	"multirisk/core/aggregate"
	"multirisk/core/engine"
	"multirisk/core/exposure"
	"multirisk/core/fragility"
	"multirisk/core/intensity"
	"multirisk/core/loss"
	"multirisk/core/schema"
	"multirisk/internal/logging"
)

// Loaders supplies the file-format collaborators the runner needs. The core
// stays agnostic of encodings; the CLI wires the adapter packages in here.
type Loaders struct {
	Exposure  func(path string) (exposure.Model, error)
	Fragility func(path string) (*fragility.Set, error)
	Mapping   func(path string) (*schema.Table, error)
	Loss      func(path string) (*loss.RatioSet, error)
	Intensity func(kind, path string) (intensity.Provider, error)
}

// PassReport is the outcome of one pass of the cascade
type PassReport struct {
	// Hazard is the pass's hazard kind
	Hazard string `json:"hazard"`

	// Summary is the pass's merged aggregate
	Summary *aggregate.Summary `json:"summary"`

	// Cells are the pass's per-cell results
	Cells []aggregate.CellResult `json:"cells,omitempty"`
}

// Report is the outcome of a whole cascade
type Report struct {
	// Scenario is the scenario name
	Scenario string `json:"scenario"`

	// Passes are the per-hazard reports in cascade order
	Passes []PassReport `json:"passes"`

	// Final is the exposure snapshot after the last pass
	Final exposure.Model `json:"final"`
}

// Runner executes cascades
type Runner struct {
	loaders Loaders
	workers int
}

// NewRunner creates a runner with the given collaborators
func NewRunner(loaders Loaders, workers int) *Runner {
	return &Runner{loaders: loaders, workers: workers}
}

// Run executes the scenario's passes in order, threading each pass's output
// exposure into the next pass's input.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	current, err := r.loaders.Exposure(sc.Exposure)
	if err != nil {
		return nil, err
	}

	report := &Report{Scenario: sc.Name}
	for _, hazard := range sc.Hazards {
		logging.Info("running hazard pass",
			zap.String("scenario", sc.Name),
			zap.String("hazard", hazard.Kind))

		input, err := r.buildPass(hazard, current)
		if err != nil {
			return nil, err
		}
		result, err := engine.Run(ctx, input)
		if err != nil {
			return nil, err
		}

		report.Passes = append(report.Passes, PassReport{
			Hazard:  hazard.Kind,
			Summary: result.Summary,
			Cells:   result.Cells,
		})
		current = result.Exposure
	}
	report.Final = current
	return report, nil
}

func (r *Runner) buildPass(hazard Hazard, current exposure.Model) (engine.PassInput, error) {
	provider, err := r.loaders.Intensity(hazard.Intensity.Kind, hazard.Intensity.File)
	if err != nil {
		return engine.PassInput{}, err
	}
	if aliases := hazard.AliasMap(); aliases != nil {
		provider = intensity.NewAliasProvider(provider, aliases)
	}

	set, err := r.loaders.Fragility(hazard.Fragility)
	if err != nil {
		return engine.PassInput{}, err
	}

	input := engine.PassInput{
		Hazard:    hazard.Kind,
		Exposure:  current,
		Intensity: provider,
		Fragility: set,
		Workers:   r.workers,
	}
	if hazard.Mapping != nil {
		table, err := r.loaders.Mapping(*hazard.Mapping)
		if err != nil {
			return engine.PassInput{}, err
		}
		input.Mapping = table
	}
	if hazard.Loss != nil {
		ratios, err := r.loaders.Loss(*hazard.Loss)
		if err != nil {
			return engine.PassInput{}, err
		}
		input.Loss = ratios
	}
	return input, nil
}
