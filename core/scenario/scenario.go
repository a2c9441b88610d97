// Package scenario defines cascading multi-hazard runs: an ordered sequence
// of hazard passes where each pass's output exposure becomes the next pass's
// input, so damage accumulates across the cascade.
package scenario

import (
	"github.com/hashicorp/hcl/v2/hclsimple"

	"multirisk/internal/errors"
)

// Scenario is a cascade definition, usually parsed from an HCL file
type Scenario struct {
	// Name labels the scenario in reports
	Name string `hcl:"name"`

	// Exposure is the path of the initial exposure model
	Exposure string `hcl:"exposure"`

	// Hazards are the passes in cascade order
	Hazards []Hazard `hcl:"hazard,block"`
}

// Hazard configures one pass of the cascade
type Hazard struct {
	// Kind labels the hazard (earthquake, tsunami, ashfall, lahar)
	Kind string `hcl:"kind,label"`

	// Fragility is the path of the fragility function file
	Fragility string `hcl:"fragility"`

	// Intensity names the resolved intensity source
	Intensity IntensitySource `hcl:"intensity,block"`

	// Aliases expose intensity fields under additional names
	Aliases []Alias `hcl:"alias,block"`

	// Mapping is the optional schema mapping table path, required when the
	// exposure and fragility schemas differ
	Mapping *string `hcl:"mapping,optional"`

	// Loss is the optional loss-ratio file path; without it the pass updates
	// damage states but prices nothing
	Loss *string `hcl:"loss,optional"`
}

// IntensitySource names an intensity data file and its layout
type IntensitySource struct {
	// Kind is the provider kind: "grid" or "points"
	Kind string `hcl:"kind"`

	// File is the path of the resolved intensity dump
	File string `hcl:"file"`
}

// Alias maps an intensity field alias to its candidate source fields
type Alias struct {
	// Name is the aliased field (e.g. "SA_01")
	Name string `hcl:"name,label"`

	// From lists source fields in priority order (e.g. ["PGA"])
	From []string `hcl:"from"`
}

// Load parses a scenario file
func Load(path string) (*Scenario, error) {
	var sc Scenario
	if err := hclsimple.DecodeFile(path, nil, &sc); err != nil {
		return nil, errors.Parsing("decoding scenario file", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the scenario for structural problems before any file I/O
func (s *Scenario) Validate() error {
	if len(s.Hazards) == 0 {
		return errors.Config("scenario defines no hazard passes")
	}
	if s.Exposure == "" {
		return errors.Config("scenario names no exposure model")
	}
	for _, h := range s.Hazards {
		if h.Fragility == "" {
			return errors.Newf(errors.TypeConfig, "hazard %q names no fragility file", h.Kind)
		}
		switch h.Intensity.Kind {
		case "grid", "points":
		default:
			return errors.Newf(errors.TypeConfig,
				"hazard %q uses unknown intensity kind %q (want grid or points)", h.Kind, h.Intensity.Kind)
		}
	}
	return nil
}

// AliasMap converts the hazard's alias blocks into the provider wiring form
func (h Hazard) AliasMap() map[string][]string {
	if len(h.Aliases) == 0 {
		return nil
	}
	aliases := make(map[string][]string, len(h.Aliases))
	for _, a := range h.Aliases {
		aliases[a.Name] = a.From
	}
	return aliases
}
