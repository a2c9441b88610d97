// Package fragility - Function store with fail-fast registration
package fragility

import (
	"sort"
	"strings"
	"sync"

	"multirisk/internal/errors"
)

// Set is a read-only store of fragility functions for one taxonomy schema,
// keyed by (taxonomy class, intensity measure type). It is safe for
// concurrent lookup once populated.
type Set struct {
	// Schema names the taxonomy schema the functions belong to
	Schema string

	mu         sync.RWMutex
	byTaxonomy map[string][]*Function
}

// NewSet creates an empty function set for a schema
func NewSet(schema string) *Set {
	return &Set{
		Schema:     schema,
		byTaxonomy: make(map[string][]*Function),
	}
}

// Add registers a function, rejecting duplicate (taxonomy, measure) pairs
func (s *Set) Add(fn *Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byTaxonomy[fn.Taxonomy] {
		if existing.IMT == fn.IMT {
			return errors.Newf(errors.TypeInput,
				"duplicate fragility function for taxonomy %q and intensity measure %q",
				fn.Taxonomy, fn.IMT)
		}
	}
	s.byTaxonomy[fn.Taxonomy] = append(s.byTaxonomy[fn.Taxonomy], fn)
	return nil
}

// Lookup returns the function for a (taxonomy, intensity measure) pair.
// A missing pair is fatal for that class's contribution: skipping it silently
// would break count conservation, so the condition is surfaced.
func (s *Set) Lookup(taxonomy, imt string) (*Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	imt = strings.ToUpper(imt)
	for _, fn := range s.byTaxonomy[taxonomy] {
		if fn.IMT == imt {
			return fn, nil
		}
	}
	return nil, errors.MissingFragility(taxonomy, imt)
}

// ForTaxonomy returns all functions of a taxonomy class, one per intensity
// measure type, in registration order. The canonical case is a single entry.
func (s *Set) ForTaxonomy(taxonomy string) ([]*Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fns := s.byTaxonomy[taxonomy]
	if len(fns) == 0 {
		return nil, errors.MissingFragility(taxonomy, "any")
	}
	return fns, nil
}

// Taxonomies returns the covered taxonomy class names in sorted order
func (s *Set) Taxonomies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.byTaxonomy))
	for name := range s.byTaxonomy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
