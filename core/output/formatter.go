// Package output provides output formatting for pass and cascade results.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"multirisk/core/exposure"
	"multirisk/core/scenario"
	"multirisk/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is a human-readable text report
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Options tunes what the text report includes
type Options struct {
	// ShowTransitions includes the per-class transition table
	ShowTransitions bool

	// ShowCells includes per-cell loss lines
	ShowCells bool
}

// Render writes a cascade report in the requested format
func Render(w io.Writer, format Format, report *scenario.Report, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatText:
		return renderText(w, report, opts)
	default:
		return errors.Newf(errors.TypeInput, "unknown output format %q", format)
	}
}

func renderText(w io.Writer, report *scenario.Report, opts Options) error {
	if report.Scenario != "" {
		fmt.Fprintf(w, "Scenario: %s\n", report.Scenario)
	}
	for _, pass := range report.Passes {
		s := pass.Summary
		fmt.Fprintf(w, "\n== %s ==\n", pass.Hazard)
		fmt.Fprintf(w, "Cells processed: %d\n", s.Cells)

		if opts.ShowTransitions && len(s.Transitions) > 0 {
			fmt.Fprintf(w, "Transitions:\n")
			for _, key := range s.TransitionKeys() {
				fmt.Fprintf(w, "  %-24s %s -> %s  %12.2f buildings\n",
					key.Taxonomy,
					exposure.StateLabel(key.From),
					exposure.StateLabel(key.To),
					s.Transitions[key])
			}
		}

		if len(s.LossByClass) > 0 {
			fmt.Fprintf(w, "Loss by class:\n")
			for _, class := range s.Classes() {
				fmt.Fprintf(w, "  %-24s %s %s\n", class, s.LossByClass[class].StringFixed(2), s.Currency)
			}
		}

		if opts.ShowCells {
			for _, cell := range pass.Cells {
				fmt.Fprintf(w, "  cell %-16s loss %s %s\n", cell.CellID, cell.Loss.StringFixed(2), s.Currency)
			}
		}

		fmt.Fprintf(w, "Total loss: %s %s\n", s.TotalLoss.StringFixed(2), s.Currency)
	}
	fmt.Fprintf(w, "\nFinal exposure: %d cells, %.2f buildings, schema %s\n",
		len(report.Final.Cells), report.Final.TotalBuildings(), report.Final.Schema)
	return nil
}
