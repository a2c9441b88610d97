package intensity

import (
	"multirisk/internal/errors"
)

// Point is one intensity sample at a location, possibly carrying several
// measure fields (a shakemap point carries PGA and the spectral ordinates)
type Point struct {
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
	Values Values  `json:"values"`
	Units  Units   `json:"units"`
}

// PointProvider answers queries with the fields of the closest sample point
type PointProvider struct {
	points []Point
}

// NewPointProvider validates and returns a point provider
func NewPointProvider(points []Point) (*PointProvider, error) {
	if len(points) == 0 {
		return nil, errors.Input("point intensity data has no samples")
	}
	for _, p := range points {
		if len(p.Values) == 0 {
			return nil, errors.Input("point intensity sample has no values")
		}
	}
	return &PointProvider{points: points}, nil
}

// Nearest returns the fields of the sample closest to the location.
// Distance is planar over lon/lat, which is how the source data is gridded;
// samples and cells come from the same projection.
func (p *PointProvider) Nearest(lon, lat float64) (Values, Units, error) {
	best := 0
	bestDist := sqDist(p.points[0], lon, lat)
	for i := 1; i < len(p.points); i++ {
		if d := sqDist(p.points[i], lon, lat); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return p.points[best].Values, p.points[best].Units, nil
}

func sqDist(p Point, lon, lat float64) float64 {
	dx := p.Lon - lon
	dy := p.Lat - lat
	return dx*dx + dy*dy
}
