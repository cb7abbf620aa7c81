package badge

import (
	"fmt"

	"digital.vasic.defecthunt/pkg/challenge"
)

// Criteria types.
const (
	TypeAtLeast           = "at_least"
	TypeSpecificSet       = "specific_set"
	TypeSpecificChallenge = "specific_challenge"
	TypeAnd               = "and"
	TypeOr                = "or"
)

// CriteriaSpec is the declarative form of a badge criterion as
// found in bank files.
//
//	at_least            N completions of any challenges
//	specific_set        every ID in Challenges completed
//	specific_challenge  the single ID in Challenges completed
//	and, or             combine the criteria in Of
type CriteriaSpec struct {
	Type       string         `json:"type" yaml:"type"`
	N          int            `json:"n,omitempty" yaml:"n,omitempty"`
	Challenges []challenge.ID `json:"challenges,omitempty" yaml:"challenges,omitempty"`
	Of         []CriteriaSpec `json:"of,omitempty" yaml:"of,omitempty"`
}

// AtLeast returns an at_least criterion.
func AtLeast(n int) CriteriaSpec {
	return CriteriaSpec{Type: TypeAtLeast, N: n}
}

// SpecificSet returns a specific_set criterion.
func SpecificSet(ids ...challenge.ID) CriteriaSpec {
	return CriteriaSpec{Type: TypeSpecificSet, Challenges: ids}
}

// SpecificChallenge returns a specific_challenge criterion.
func SpecificChallenge(id challenge.ID) CriteriaSpec {
	return CriteriaSpec{Type: TypeSpecificChallenge, Challenges: []challenge.ID{id}}
}

// AllOf returns an and criterion.
func AllOf(of ...CriteriaSpec) CriteriaSpec {
	return CriteriaSpec{Type: TypeAnd, Of: of}
}

// AnyOf returns an or criterion.
func AnyOf(of ...CriteriaSpec) CriteriaSpec {
	return CriteriaSpec{Type: TypeOr, Of: of}
}

// References returns every challenge ID the criterion names,
// including those in nested criteria.
func (c CriteriaSpec) References() []challenge.ID {
	var out []challenge.ID
	out = append(out, c.Challenges...)
	for _, sub := range c.Of {
		out = append(out, sub.References()...)
	}
	return out
}

// Criteria is a compiled criterion evaluated against a learner's
// completed challenges.
type Criteria func(completed challenge.IDSet) bool

// Compile validates spec and builds its Criteria. When known is
// non-nil, every referenced challenge must be in it. Errors are
// *challenge.ConfigurationError.
func Compile(spec CriteriaSpec, known challenge.IDSet) (Criteria, error) {
	return compile(spec, known, "criteria")
}

func compile(spec CriteriaSpec, known challenge.IDSet, path string) (Criteria, error) {
	switch spec.Type {
	case TypeAtLeast:
		if spec.N <= 0 {
			return nil, criteriaError(path, "n must be positive, got %d", spec.N)
		}
		n := spec.N
		return func(completed challenge.IDSet) bool {
			return completed.Len() >= n
		}, nil

	case TypeSpecificSet, TypeSpecificChallenge:
		if len(spec.Challenges) == 0 {
			return nil, criteriaError(path, "challenges must not be empty")
		}
		if spec.Type == TypeSpecificChallenge && len(spec.Challenges) != 1 {
			return nil, criteriaError(path,
				"exactly one challenge is required, got %d", len(spec.Challenges))
		}
		ids := make([]challenge.ID, len(spec.Challenges))
		for i, id := range spec.Challenges {
			if id == "" {
				return nil, criteriaError(path, "challenges[%d] must not be empty", i)
			}
			if known != nil && !known.Has(id) {
				return nil, criteriaError(path, "references unknown challenge %q", id)
			}
			ids[i] = id
		}
		return func(completed challenge.IDSet) bool {
			for _, id := range ids {
				if !completed.Has(id) {
					return false
				}
			}
			return true
		}, nil

	case TypeAnd, TypeOr:
		if len(spec.Of) == 0 {
			return nil, criteriaError(path, "at least one sub-criterion is required")
		}
		subs := make([]Criteria, len(spec.Of))
		for i, sub := range spec.Of {
			c, err := compile(sub, known, fmt.Sprintf("%s.of[%d]", path, i))
			if err != nil {
				return nil, err
			}
			subs[i] = c
		}
		if spec.Type == TypeAnd {
			return func(completed challenge.IDSet) bool {
				for _, c := range subs {
					if !c(completed) {
						return false
					}
				}
				return true
			}, nil
		}
		return func(completed challenge.IDSet) bool {
			for _, c := range subs {
				if c(completed) {
					return true
				}
			}
			return false
		}, nil

	case "":
		return nil, criteriaError(path, "type is required")
	default:
		return nil, criteriaError(path, "unknown criteria type %q", spec.Type)
	}
}

func criteriaError(path, format string, args ...any) error {
	return &challenge.ConfigurationError{
		Subject: "badge criteria",
		Message: path + ": " + fmt.Sprintf(format, args...),
	}
}
