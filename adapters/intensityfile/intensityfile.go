// Package intensityfile reads resolved intensity dumps into providers.
// Hazard-source parsing (shakemap XML, GeoTIFF, shapefiles) happens upstream;
// these files carry the already-resolved scalar fields in JSON.
package intensityfile

import (
	"encoding/json"
	"os"

	"multirisk/core/intensity"
	"multirisk/internal/errors"
)

// KindGrid and KindPoints name the two supported dump layouts
const (
	KindGrid   = "grid"
	KindPoints = "points"
)

type gridFile struct {
	Name    string      `json:"name"`
	Unit    string      `json:"unit"`
	West    float64     `json:"west"`
	South   float64     `json:"south"`
	DX      float64     `json:"dx"`
	DY      float64     `json:"dy"`
	NAValue float64     `json:"na_value"`
	Rows    [][]float64 `json:"rows"`
}

type pointsFile struct {
	Points []intensity.Point `json:"points"`
}

// Load reads an intensity dump of the given kind into a provider
func Load(kind, path string) (intensity.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("reading intensity file", err)
	}

	switch kind {
	case KindGrid:
		var file gridFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.Parsing("decoding intensity grid file", err)
		}
		return intensity.NewGridProvider(file.Name, file.Unit, file.West, file.South, file.DX, file.DY, file.Rows, file.NAValue)
	case KindPoints:
		var file pointsFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.Parsing("decoding intensity points file", err)
		}
		return intensity.NewPointProvider(file.Points)
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown intensity file kind %q", kind)
	}
}
