package badge

import (
	"fmt"
	"sort"
	"sync"

	"digital.vasic.defecthunt/pkg/challenge"
)

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithKnownChallenges makes Register reject badges whose criteria
// reference challenges outside ids.
func WithKnownChallenges(ids challenge.IDSet) CatalogOption {
	return func(c *Catalog) {
		c.known = ids
	}
}

// Catalog is the set of badge definitions. It is safe for
// concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	badges map[string]*Definition
	known  challenge.IDSet
}

// NewCatalog creates an empty catalogue.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{badges: make(map[string]*Definition)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register compiles a copy of def and adds it. Duplicate names
// and invalid criteria are *challenge.ConfigurationError.
func (c *Catalog) Register(def *Definition) error {
	d := *def
	if err := d.Compile(c.known); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.badges[d.Name]; exists {
		return &challenge.ConfigurationError{
			Subject: "badge",
			Message: fmt.Sprintf("duplicate badge name: %s", d.Name),
		}
	}
	c.badges[d.Name] = &d
	return nil
}

// Get returns the badge with the given name or a
// *challenge.UnknownBadgeError.
func (c *Catalog) Get(name string) (*Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.badges[name]
	if !ok {
		return nil, &challenge.UnknownBadgeError{Name: name}
	}
	return d, nil
}

// List returns all badges sorted by name. This is the order in
// which the engine evaluates and awards them.
func (c *Catalog) List() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Definition, 0, len(c.badges))
	for _, d := range c.badges {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of badges.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.badges)
}
