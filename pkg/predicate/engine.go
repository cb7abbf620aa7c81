package predicate

import (
	"fmt"
	"strings"
	"sync"
)

// Builder compiles a custom predicate type. It is called with the
// spec whose Type matched the registered name.
type Builder func(spec Spec) (Predicate, error)

// Engine compiles Specs into Predicates. It knows the built-in
// types and any custom types added through Register. It is safe
// for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewEngine creates an Engine that knows the built-in types.
func NewEngine() *Engine {
	return &Engine{builders: make(map[string]Builder)}
}

// Default is the package-level engine used by Compile.
var Default = NewEngine()

// Compile compiles spec with the Default engine.
func Compile(spec Spec) (Predicate, error) {
	return Default.Compile(spec)
}

// Register adds a custom predicate type. Returns an error if the
// name is empty, shadows a built-in type or is already
// registered.
func (e *Engine) Register(predicateType string, builder Builder) error {
	if predicateType == "" {
		return fmt.Errorf("predicate type name cannot be empty")
	}
	if builder == nil {
		return fmt.Errorf("predicate type %s: builder is nil", predicateType)
	}
	if isBuiltin(predicateType) {
		return fmt.Errorf(
			"predicate type already registered: %s", predicateType,
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.builders[predicateType]; exists {
		return fmt.Errorf(
			"predicate type already registered: %s", predicateType,
		)
	}
	e.builders[predicateType] = builder
	return nil
}

// HasType reports whether the engine can compile the given type.
func (e *Engine) HasType(predicateType string) bool {
	if isBuiltin(predicateType) {
		return true
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.builders[predicateType]
	return exists
}

// Compile turns spec into a Predicate. Every problem with the
// spec is reported as a *SpecError.
func (e *Engine) Compile(spec Spec) (Predicate, error) {
	return e.compile(spec, "")
}

func (e *Engine) compile(spec Spec, path string) (Predicate, error) {
	fail := func(format string, args ...any) (Predicate, error) {
		return nil, &SpecError{
			Path:    path,
			Type:    spec.Type,
			Message: fmt.Sprintf(format, args...),
		}
	}

	switch spec.Type {
	case "":
		return fail("type is required")

	case TypeContains:
		if Normalize(spec.Value) == "" {
			return fail("value must not be blank")
		}
		return ContainsAny(spec.Value), nil

	case TypeContainsAny, TypeContainsAll:
		if len(spec.Values) == 0 {
			return fail("values must not be empty")
		}
		for i, v := range spec.Values {
			if Normalize(v) == "" {
				return fail("values[%d] must not be blank", i)
			}
		}
		if spec.Type == TypeContainsAny {
			return ContainsAny(spec.Values...), nil
		}
		return ContainsAll(spec.Values...), nil

	case TypeMatches:
		if spec.Value == "" {
			return fail("pattern must not be empty")
		}
		p, err := Matches(spec.Value)
		if err != nil {
			return fail("invalid pattern: %v", err)
		}
		return p, nil

	case TypeEquals:
		if Normalize(spec.Value) == "" {
			return fail("value must not be blank")
		}
		return EqualsExact(spec.Value), nil

	case TypeAnd, TypeOr:
		if len(spec.Of) == 0 {
			return fail("at least one operand is required")
		}
		children, err := e.compileChildren(spec.Of, path)
		if err != nil {
			return nil, err
		}
		if spec.Type == TypeAnd {
			return And(children...), nil
		}
		return Or(children...), nil

	case TypeNot:
		if len(spec.Of) != 1 {
			return fail("exactly one operand is required, got %d", len(spec.Of))
		}
		child, err := e.compile(spec.Of[0], childPath(path, 0))
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	}

	e.mu.RLock()
	builder, exists := e.builders[spec.Type]
	e.mu.RUnlock()
	if !exists {
		return fail("unknown predicate type")
	}

	p, err := builder(spec)
	if err != nil {
		return fail("%v", err)
	}
	if p == nil {
		return fail("builder returned no predicate")
	}
	return p, nil
}

func (e *Engine) compileChildren(specs []Spec, path string) ([]Predicate, error) {
	out := make([]Predicate, 0, len(specs))
	for i, s := range specs {
		p, err := e.compile(s, childPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func childPath(parent string, i int) string {
	if parent == "" {
		return fmt.Sprintf("of[%d]", i)
	}
	return fmt.Sprintf("%s.of[%d]", parent, i)
}

func isBuiltin(predicateType string) bool {
	switch strings.ToLower(predicateType) {
	case TypeContains, TypeContainsAny, TypeContainsAll,
		TypeMatches, TypeEquals, TypeAnd, TypeOr, TypeNot:
		return true
	}
	return false
}
