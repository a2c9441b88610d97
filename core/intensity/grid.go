package intensity

import (
	"math"

	"multirisk/internal/errors"
)

// GridProvider samples a single intensity field from a regular grid, the
// in-memory form of a raster band. Queries outside the grid bounds return
// the NA value instead of failing, matching how masked raster cells are
// treated by upstream hazard tools.
type GridProvider struct {
	// Name is the intensity field the grid carries (e.g. "MWH")
	Name string

	// Unit is the unit of the grid values
	Unit string

	// West and South are the coordinates of the outer edge of the first cell
	West  float64
	South float64

	// DX and DY are the cell sizes along lon and lat
	DX float64
	DY float64

	// Rows holds the values, Rows[r][c] with r counting up from South
	Rows [][]float64

	// NAValue is returned for locations outside the grid
	NAValue float64
}

// NewGridProvider validates and returns a grid provider
func NewGridProvider(name, unit string, west, south, dx, dy float64, rows [][]float64, naValue float64) (*GridProvider, error) {
	if dx <= 0 || dy <= 0 {
		return nil, errors.Input("grid cell size must be positive")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Input("grid has no cells")
	}
	width := len(rows[0])
	for _, row := range rows {
		if len(row) != width {
			return nil, errors.Input("grid rows have inconsistent width")
		}
	}
	return &GridProvider{
		Name:    name,
		Unit:    unit,
		West:    west,
		South:   south,
		DX:      dx,
		DY:      dy,
		Rows:    rows,
		NAValue: naValue,
	}, nil
}

// Nearest returns the value of the grid cell containing the location, or the
// NA value outside the bounds
func (g *GridProvider) Nearest(lon, lat float64) (Values, Units, error) {
	// Floor, not truncation: locations less than one cell west or south of
	// the grid must index negative, not into the edge cell
	col := int(math.Floor((lon - g.West) / g.DX))
	row := int(math.Floor((lat - g.South) / g.DY))

	value := g.NAValue
	if row >= 0 && row < len(g.Rows) && col >= 0 && col < len(g.Rows[row]) {
		value = g.Rows[row][col]
	}
	return Values{g.Name: value}, Units{g.Name: g.Unit}, nil
}
