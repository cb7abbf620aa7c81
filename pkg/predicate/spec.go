package predicate

import "fmt"

// Built-in predicate types accepted in a Spec.
const (
	TypeContains    = "contains"
	TypeContainsAny = "contains_any"
	TypeContainsAll = "contains_all"
	TypeMatches     = "matches"
	TypeEquals      = "equals"
	TypeAnd         = "and"
	TypeOr          = "or"
	TypeNot         = "not"
)

// Spec is the declarative, serialisable form of a predicate. It
// is a tagged variant: Type selects the variant and decides which
// of the other fields are read.
type Spec struct {
	// Type is the predicate type (e.g., "contains_all",
	// "matches", "or").
	Type string `json:"type" yaml:"type"`

	// Value holds the single operand of "contains",
	// "matches" and "equals".
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds the terms of "contains_any" and
	// "contains_all".
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`

	// Of holds the operands of "and", "or" and "not".
	Of []Spec `json:"of,omitempty" yaml:"of,omitempty"`
}

// SpecError reports a malformed Spec. Path locates the offending
// node inside a nested spec, e.g. "of[1].of[0]".
type SpecError struct {
	Path    string
	Type    string
	Message string
}

func (e *SpecError) Error() string {
	path := e.Path
	if path == "" {
		path = "predicate"
	}
	if e.Type == "" {
		return fmt.Sprintf("%s: %s", path, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", path, e.Type, e.Message)
}

// Leaf helpers for building specs in code.

// ContainsAnySpec returns a "contains_any" spec.
func ContainsAnySpec(terms ...string) Spec {
	return Spec{Type: TypeContainsAny, Values: terms}
}

// ContainsAllSpec returns a "contains_all" spec.
func ContainsAllSpec(terms ...string) Spec {
	return Spec{Type: TypeContainsAll, Values: terms}
}

// MatchesSpec returns a "matches" spec.
func MatchesSpec(pattern string) Spec {
	return Spec{Type: TypeMatches, Value: pattern}
}

// EqualsSpec returns an "equals" spec.
func EqualsSpec(token string) Spec {
	return Spec{Type: TypeEquals, Value: token}
}

// AndSpec returns an "and" spec.
func AndSpec(of ...Spec) Spec { return Spec{Type: TypeAnd, Of: of} }

// OrSpec returns an "or" spec.
func OrSpec(of ...Spec) Spec { return Spec{Type: TypeOr, Of: of} }

// NotSpec returns a "not" spec.
func NotSpec(of Spec) Spec { return Spec{Type: TypeNot, Of: []Spec{of}} }
