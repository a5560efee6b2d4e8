// Package catalog holds the immutable reference data shared by the
// classifier, followup resolver, and matcher.
package catalog

import (
	"fmt"

	"github.com/okian/woke/internal/domain/model"
)

// Catalog is an immutable set of service categories, the provider snapshot,
// and the default customer location. Safe for concurrent use without locks.
type Catalog struct {
	services        []model.ServiceCategory
	byID            map[string]int
	providers       []model.Provider
	defaultLocation model.Location
}

// New validates and indexes the reference data. Inputs are copied.
func New(services []model.ServiceCategory, providers []model.Provider, defaultLocation model.Location) (*Catalog, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: no services", ErrInvalidCatalog)
	}

	c := &Catalog{
		services:        make([]model.ServiceCategory, len(services)),
		byID:            make(map[string]int, len(services)),
		providers:       make([]model.Provider, len(providers)),
		defaultLocation: defaultLocation,
	}
	copy(c.providers, providers)

	for i, s := range services {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: service %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate service id %q", ErrInvalidCatalog, s.ID)
		}
		if s.Label == "" {
			s.Label = s.ID
		}
		seen := make(map[string]struct{}, len(s.Followups))
		for _, f := range s.Followups {
			if _, dup := seen[f.ID]; dup || f.ID == "" {
				return nil, fmt.Errorf("%w: service %q has empty or duplicate followup id %q", ErrInvalidCatalog, s.ID, f.ID)
			}
			seen[f.ID] = struct{}{}
		}
		c.services[i] = s
		c.byID[s.ID] = i
	}
	return c, nil
}

// Service looks up a category by id.
func (c *Catalog) Service(id string) (model.ServiceCategory, error) {
	i, ok := c.byID[id]
	if !ok {
		return model.ServiceCategory{}, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	return c.services[i], nil
}

// Has reports whether id names a known category.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Services returns the categories in catalog order. The slice is a copy.
func (c *Catalog) Services() []model.ServiceCategory {
	out := make([]model.ServiceCategory, len(c.services))
	copy(out, c.services)
	return out
}

// IDs returns the category ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.services))
	for i, s := range c.services {
		ids[i] = s.ID
	}
	return ids
}

// Providers returns the provider snapshot. Callers must not modify it.
func (c *Catalog) Providers() []model.Provider {
	return c.providers
}

// DefaultLocation is used when a match request carries no location.
func (c *Catalog) DefaultLocation() model.Location {
	return c.defaultLocation
}
