// Package registry provides challenge registration and lookup.
// A registry is filled once at startup and then frozen; a frozen
// registry is an immutable snapshot that any number of goroutines
// may read without coordination.
package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/predicate"
)

// ErrRegistryFrozen is returned by Register after Freeze.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Registry defines the interface for managing challenge
// definitions.
type Registry interface {
	// Register compiles and adds a definition.
	Register(def *challenge.Definition) error

	// Get retrieves a definition by ID.
	Get(id challenge.ID) (*challenge.Definition, error)

	// List returns all registered definitions sorted by ID.
	List() []*challenge.Definition

	// ListByCategory returns definitions of the given
	// category sorted by ID.
	ListByCategory(category string) []*challenge.Definition

	// Count returns the number of registered definitions.
	Count() int
}

// Option configures a DefaultRegistry.
type Option func(*DefaultRegistry)

// WithEngine sets the predicate engine used to compile
// definitions. Custom predicate types must be registered on it
// before definitions using them are added.
func WithEngine(e *predicate.Engine) Option {
	return func(r *DefaultRegistry) {
		r.engine = e
	}
}

// DefaultRegistry is the standard Registry implementation.
type DefaultRegistry struct {
	mu          sync.RWMutex
	frozen      atomic.Bool
	engine      *predicate.Engine
	definitions map[challenge.ID]*challenge.Definition
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry(opts ...Option) *DefaultRegistry {
	r := &DefaultRegistry{
		engine:      predicate.Default,
		definitions: make(map[challenge.ID]*challenge.Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register compiles a copy of def and adds it. It returns a
// *challenge.DuplicateChallengeError if the ID is taken, a
// *challenge.ConfigurationError if the definition does not
// compile and ErrRegistryFrozen after Freeze.
func (r *DefaultRegistry) Register(def *challenge.Definition) error {
	if def == nil {
		return &challenge.ConfigurationError{
			Subject: "challenge", Message: "definition is nil",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	if _, exists := r.definitions[def.ID]; exists {
		return &challenge.DuplicateChallengeError{ID: def.ID}
	}

	compiled := *def
	if err := compiled.Compile(r.engine); err != nil {
		return err
	}

	r.definitions[def.ID] = &compiled
	return nil
}

// Freeze makes the registry read-only.
func (r *DefaultRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *DefaultRegistry) Frozen() bool {
	return r.frozen.Load()
}

// Get retrieves a definition by ID. The returned definition is
// shared and must not be modified.
func (r *DefaultRegistry) Get(id challenge.ID) (*challenge.Definition, error) {
	defer r.rlock()()

	def, exists := r.definitions[id]
	if !exists {
		return nil, &challenge.UnknownChallengeError{ID: id}
	}
	return def, nil
}

// List returns all registered definitions sorted by ID.
func (r *DefaultRegistry) List() []*challenge.Definition {
	defer r.rlock()()

	out := make([]*challenge.Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		out = append(out, d)
	}
	sortByID(out)
	return out
}

// ListByCategory returns definitions whose category matches.
func (r *DefaultRegistry) ListByCategory(category string) []*challenge.Definition {
	defer r.rlock()()

	var out []*challenge.Definition
	for _, d := range r.definitions {
		if d.Category == category {
			out = append(out, d)
		}
	}
	sortByID(out)
	return out
}

// IDs returns the set of registered challenge IDs.
func (r *DefaultRegistry) IDs() challenge.IDSet {
	defer r.rlock()()

	s := make(challenge.IDSet, len(r.definitions))
	for id := range r.definitions {
		s[id] = struct{}{}
	}
	return s
}

// Count returns the number of registered definitions.
func (r *DefaultRegistry) Count() int {
	defer r.rlock()()
	return len(r.definitions)
}

// rlock takes the read lock unless the registry is frozen, in
// which case the map can no longer change. It returns the
// matching unlock.
func (r *DefaultRegistry) rlock() func() {
	if r.frozen.Load() {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func sortByID(defs []*challenge.Definition) {
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
}
