// Package intensity provides hazard intensity lookup at exposure cell
// locations. The engine never parses hazard source formats itself; providers
// wrap already-resolved in-memory data and answer nearest-sample queries.
package intensity

// Values maps intensity measure field names (uppercase) to scalar values
type Values map[string]float64

// Units maps intensity measure field names to their units
type Units map[string]string

// Provider answers intensity queries at a location. Implementations are
// read-only and safe for concurrent use; which hazard format produced the
// data is invisible to callers.
type Provider interface {
	// Nearest returns all intensity fields known at the sample closest to the
	// given location, with their units
	Nearest(lon, lat float64) (Values, Units, error)
}
