// Package plugin lets extensions contribute predicate types to a
// predicate.Engine before a challenge bank is compiled against it.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/predicate"
)

// Plugin contributes predicate builders during Init.
type Plugin interface {
	Name() string
	Version() string
	Init(ctx *PluginContext) error
}

// PluginContext is handed to every Plugin's Init.
type PluginContext struct {
	// Predicates receives the plugin's predicate types.
	Predicates *predicate.Engine
	Config     map[string]any
	Logger     logging.Logger
}

// Registry tracks plugins by name and whether each one has been
// initialized.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	ready   map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		ready:   make(map[string]bool),
	}
}

// Register adds p. Names must be non-empty and unique.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return errors.New("plugin is nil")
	}
	name := p.Name()
	if name == "" {
		return errors.New("plugin name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.plugins[name]; dup {
		return fmt.Errorf("plugin %q already registered", name)
	}
	r.plugins[name] = p
	return nil
}

// InitAll initializes pending plugins in name order so that
// registration conflicts surface deterministically. The first
// failure stops the walk; plugins already initialized stay so.
func (r *Registry) InitAll(ctx *PluginContext) error {
	var log logging.Logger = logging.NullLogger{}
	if ctx != nil {
		log = logging.OrNull(ctx.Logger)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.names() {
		if r.ready[name] {
			continue
		}
		p := r.plugins[name]
		if err := p.Init(ctx); err != nil {
			return fmt.Errorf("init plugin %q: %w", name, err)
		}
		r.ready[name] = true
		log.Debug("plugin initialized",
			logging.StringField("plugin", name),
			logging.StringField("version", p.Version()),
		)
	}
	return nil
}

// Names lists registered plugins in name order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

// Ready reports whether name has been initialized.
func (r *Registry) Ready(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready[name]
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Builtin returns the plugins shipped with the module.
func Builtin() []Plugin {
	return []Plugin{NewTextPlugin()}
}

// NewPredicateEngine returns ctx.Predicates, or a fresh engine
// when unset, extended by every plugin.
func NewPredicateEngine(ctx *PluginContext, plugins ...Plugin) (*predicate.Engine, error) {
	if ctx == nil {
		ctx = &PluginContext{}
	}
	if ctx.Predicates == nil {
		ctx.Predicates = predicate.NewEngine()
	}
	r := NewRegistry()
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("load plugin: %w", err)
		}
	}
	if err := r.InitAll(ctx); err != nil {
		return nil, err
	}
	return ctx.Predicates, nil
}
