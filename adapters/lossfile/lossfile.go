// Package lossfile reads loss-ratio sets from YAML data files, one file per
// taxonomy schema:
//
//	schema: SARA_v1.0
//	currency: USD
//	by_state: [0.0, 0.05, 0.2, 0.5, 1.0]
//	by_taxonomy:
//	  URM1: [0.0, 0.1, 0.35, 0.7, 1.0]
package lossfile

import (
	"os"

	"gopkg.in/yaml.v3"

	"multirisk/core/loss"
	"multirisk/internal/errors"
)

// Load reads and validates a loss-ratio set
func Load(path string) (*loss.RatioSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("reading loss ratio file", err)
	}
	return Parse(data)
}

// Parse reads and validates a loss-ratio set from YAML bytes
func Parse(data []byte) (*loss.RatioSet, error) {
	var set loss.RatioSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, errors.Parsing("decoding loss ratio file", err)
	}
	if set.Schema == "" {
		return nil, errors.Input("loss ratio file names no schema")
	}
	if set.Currency == "" {
		set.Currency = "USD"
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
