// Package bank loads challenge banks: files holding the challenge
// definitions and badge definitions of one installation. A bank is
// built once into a frozen registry and a badge catalogue.
package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/predicate"
	"digital.vasic.defecthunt/pkg/registry"
)

// ReadFile parses a JSON or YAML bank file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file %s: %w", path, err)
	}

	var file File
	if err := registry.Unmarshal(path, data, &file); err != nil {
		return nil, &challenge.ConfigurationError{
			Subject: "bank " + path,
			Message: "parse: " + err.Error(),
			Err:     err,
		}
	}
	return &file, nil
}

// Bank accumulates the contents of one or more bank files.
type Bank struct {
	mu         sync.RWMutex
	challenges []challenge.Definition
	badges     []badge.Definition
	sources    []string
}

// New creates a new empty Bank.
func New() *Bank {
	return &Bank{}
}

// Add appends the contents of file, recorded under source.
func (b *Bank) Add(source string, file *File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.challenges = append(b.challenges, file.Challenges...)
	b.badges = append(b.badges, file.Badges...)
	b.sources = append(b.sources, source)
}

// LoadFile reads a bank file and adds its contents.
func (b *Bank) LoadFile(path string) error {
	file, err := ReadFile(path)
	if err != nil {
		return err
	}
	b.Add(path, file)
	return nil
}

// LoadPath loads path as a single file, or every bank file in it
// when it is a directory.
func (b *Bank) LoadPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat bank path %s: %w", path, err)
	}
	if info.IsDir() {
		return b.LoadDir(path)
	}
	return b.LoadFile(path)
}

// LoadDir loads all .json, .yaml and .yml files in dir in name
// order.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read bank directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !registry.IsBankFile(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Challenges returns the loaded challenge definitions in load
// order.
func (b *Bank) Challenges() []challenge.Definition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]challenge.Definition, len(b.challenges))
	copy(out, b.challenges)
	return out
}

// Badges returns the loaded badge definitions in load order.
func (b *Bank) Badges() []badge.Definition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]badge.Definition, len(b.badges))
	copy(out, b.badges)
	return out
}

// Count returns the number of loaded challenges.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.challenges)
}

// Sources returns the list of loaded file paths.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.sources))
	copy(result, b.sources)
	return result
}

// Snapshot is a built bank: an immutable challenge registry and
// the badge catalogue validated against it.
type Snapshot struct {
	Registry *registry.DefaultRegistry
	Catalog  *badge.Catalog
}

// Build compiles every loaded challenge with engine (nil means
// predicate.Default) and every badge against the resulting set of
// challenge IDs. The registry is frozen on success. The first
// problem found is returned; ValidateFile reports all of them.
func (b *Bank) Build(engine *predicate.Engine) (*Snapshot, error) {
	reg := registry.NewRegistry(registry.WithEngine(engine))
	for _, def := range b.Challenges() {
		def := def
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("build bank: %w", err)
		}
	}

	catalog := badge.NewCatalog(badge.WithKnownChallenges(reg.IDs()))
	for _, def := range b.Badges() {
		def := def
		if err := catalog.Register(&def); err != nil {
			return nil, fmt.Errorf("build bank: %w", err)
		}
	}

	reg.Freeze()
	return &Snapshot{Registry: reg, Catalog: catalog}, nil
}

// Open loads path (a file or directory) and builds it.
func Open(path string, engine *predicate.Engine) (*Snapshot, error) {
	b := New()
	if err := b.LoadPath(path); err != nil {
		return nil, err
	}
	return b.Build(engine)
}
