// Package fragilityfile reads fragility function sets from their JSON
// exchange format:
//
//	{
//	  "meta": {"id": "SARA_v1.0", "shape": "logncdf"},
//	  "data": [
//	    {"taxonomy": "URM1", "imt": "pga", "imu": "g",
//	     "D1_mean": 5.9, "D1_stddev": 0.8,
//	     "D2_mean": 6.7, "D2_stddev": 0.8}
//	  ]
//	}
//
// Curve keys name the target damage state. The plain form D2_mean conditions
// on the pristine state; the sublevel forms D_1_2_mean and D1_2_mean condition
// on damage state 1. Optional im_min/im_max bound the defined intensity range.
package fragilityfile

import (
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	"multirisk/core/fragility"
	"multirisk/internal/errors"
)

type fileFormat struct {
	Meta fileMeta                     `json:"meta"`
	Data []map[string]json.RawMessage `json:"data"`
}

type fileMeta struct {
	ID    string `json:"id"`
	Shape string `json:"shape"`
}

var meanKey = regexp.MustCompile(`^D_?(\d+)(?:_(\d+))?_mean$`)

// Load reads a fragility set from a JSON file
func Load(path string) (*fragility.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("reading fragility file", err)
	}
	return Parse(data)
}

// Parse reads a fragility set from JSON bytes
func Parse(data []byte) (*fragility.Set, error) {
	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Parsing("decoding fragility file", err)
	}
	if file.Meta.ID == "" {
		return nil, errors.Input("fragility file names no schema id")
	}
	shape := fragility.Shape(file.Meta.Shape)

	set := fragility.NewSet(file.Meta.ID)
	for _, dataset := range file.Data {
		fn, err := parseDataset(dataset, shape)
		if err != nil {
			return nil, err
		}
		if err := set.Add(fn); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func parseDataset(dataset map[string]json.RawMessage, shape fragility.Shape) (*fragility.Function, error) {
	taxonomy, err := stringField(dataset, "taxonomy")
	if err != nil {
		return nil, err
	}
	imt, err := stringField(dataset, "imt")
	if err != nil {
		return nil, err
	}
	imu, err := stringField(dataset, "imu")
	if err != nil {
		return nil, err
	}

	var states []fragility.LimitState
	for key := range dataset {
		from, to, ok := parseCurveKey(key)
		if !ok {
			continue
		}
		mean, err := floatField(dataset, key)
		if err != nil {
			return nil, err
		}
		stddevKey := strings.Replace(key, "_mean", "_stddev", 1)
		stddev, err := floatField(dataset, stddevKey)
		if err != nil {
			return nil, errors.Newf(errors.TypeParsing,
				"curve %s for taxonomy %q has no %s", key, taxonomy, stddevKey)
		}

		ls, err := fragility.NewLimitState(shape, from, to, mean, stddev)
		if err != nil {
			return nil, err
		}
		states = append(states, ls)
	}

	fn, err := fragility.NewFunction(taxonomy, strings.ToUpper(imt), imu, shape, states)
	if err != nil {
		return nil, err
	}

	min, max := 0.0, 0.0
	if _, ok := dataset["im_min"]; ok {
		if min, err = floatField(dataset, "im_min"); err != nil {
			return nil, err
		}
	}
	if _, ok := dataset["im_max"]; ok {
		if max, err = floatField(dataset, "im_max"); err != nil {
			return nil, err
		}
	}
	return fn.WithIntensityRange(min, max), nil
}

// parseCurveKey decodes a curve mean key into its (from, to) states.
// "D2_mean" is 0->2; "D_1_2_mean" and "D1_2_mean" are 1->2.
func parseCurveKey(key string) (from, to int, ok bool) {
	m := meanKey.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, false
	}
	first, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		// no from state given, the curve conditions on the pristine state
		return 0, first, true
	}
	second, _ := strconv.Atoi(m[2])
	return first, second, true
}

func stringField(dataset map[string]json.RawMessage, key string) (string, error) {
	raw, ok := dataset[key]
	if !ok {
		return "", errors.Newf(errors.TypeParsing, "fragility dataset misses %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.Parsing("decoding fragility field "+key, err)
	}
	return s, nil
}

func floatField(dataset map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := dataset[key]
	if !ok {
		return 0, errors.Newf(errors.TypeParsing, "fragility dataset misses %q", key)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, errors.Parsing("decoding fragility field "+key, err)
	}
	return f, nil
}
