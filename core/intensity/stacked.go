package intensity

// StackedProvider exposes the union of several providers' fields, so one
// lookup serves fragility functions keyed on different measure types.
// The first provider carrying a field wins.
type StackedProvider struct {
	providers []Provider
}

// NewStackedProvider stacks providers in priority order
func NewStackedProvider(providers ...Provider) *StackedProvider {
	return &StackedProvider{providers: providers}
}

// Nearest merges the nearest-sample fields of all stacked providers
func (s *StackedProvider) Nearest(lon, lat float64) (Values, Units, error) {
	merged := Values{}
	units := Units{}
	for _, p := range s.providers {
		v, u, err := p.Nearest(lon, lat)
		if err != nil {
			return nil, nil, err
		}
		for field, value := range v {
			if _, ok := merged[field]; ok {
				continue
			}
			merged[field] = value
			units[field] = u[field]
		}
	}
	return merged, units, nil
}
