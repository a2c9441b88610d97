package intensity

// AliasProvider fills in intensity fields that fragility models expect under a
// different name than the hazard source supplies. A typical seismic wiring
// aliases SA_01 and SA_03 to PGA, and the inundation depth ID to the maximum
// wave height MWH. Aliases never override a field the inner provider already
// carries.
type AliasProvider struct {
	inner Provider

	// Aliases maps an alias field to candidate source fields, first hit wins
	Aliases map[string][]string
}

// NewAliasProvider wraps a provider with field aliases
func NewAliasProvider(inner Provider, aliases map[string][]string) *AliasProvider {
	return &AliasProvider{inner: inner, Aliases: aliases}
}

// Nearest resolves the inner provider's fields, then adds aliased fields
func (a *AliasProvider) Nearest(lon, lat float64) (Values, Units, error) {
	innerValues, innerUnits, err := a.inner.Nearest(lon, lat)
	if err != nil {
		return nil, nil, err
	}
	// copy before extending; providers may hand out their backing maps
	values := make(Values, len(innerValues)+len(a.Aliases))
	units := make(Units, len(innerUnits)+len(a.Aliases))
	for field, v := range innerValues {
		values[field] = v
		units[field] = innerUnits[field]
	}
	for alias, sources := range a.Aliases {
		if _, ok := values[alias]; ok {
			continue
		}
		for _, src := range sources {
			if v, ok := values[src]; ok {
				values[alias] = v
				units[alias] = units[src]
				break
			}
		}
	}
	return values, units, nil
}
