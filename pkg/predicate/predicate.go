// Package predicate provides the acceptance predicates used to
// judge a learner's free-text explanation of a defect. Predicates
// operate on normalised input and are pure and total: they never
// fail or panic, whatever the input.
package predicate

import (
	"regexp"
	"strings"
)

// Predicate reports whether a normalised learner input satisfies
// an acceptance rule.
type Predicate func(input string) bool

// Normalize lower-cases s and trims leading and trailing
// whitespace. It is applied once by the evaluator before any
// predicate runs, so individual predicates never re-normalise.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContainsAny returns a Predicate that is true when at least one
// of the terms is a substring of the input. Terms are normalised
// on construction.
func ContainsAny(terms ...string) Predicate {
	normalized := normalizeTerms(terms)
	return func(input string) bool {
		for _, t := range normalized {
			if strings.Contains(input, t) {
				return true
			}
		}
		return false
	}
}

// ContainsAll returns a Predicate that is true when every term is
// a substring of the input. With no terms it is never true.
func ContainsAll(terms ...string) Predicate {
	normalized := normalizeTerms(terms)
	return func(input string) bool {
		if len(normalized) == 0 {
			return false
		}
		for _, t := range normalized {
			if !strings.Contains(input, t) {
				return false
			}
		}
		return true
	}
}

// EqualsExact returns a Predicate that is true only when the
// input equals token after normalisation. It suits challenges
// whose answer is a discoverable attribute value rather than an
// explanation.
func EqualsExact(token string) Predicate {
	want := Normalize(token)
	return func(input string) bool {
		return want != "" && input == want
	}
}

// Matches compiles pattern case-insensitively and returns a
// Predicate that is true when the pattern matches anywhere in the
// input. Inputs arrive lower-cased, so a literal "Email" in the
// pattern must still match "email". A malformed pattern is
// reported here, never at evaluation time.
func Matches(pattern string) (Predicate, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	return MatchesRegexp(re), nil
}

// MustMatch is like Matches but panics on a malformed pattern.
// It is meant for package-level tables of static challenges.
func MustMatch(pattern string) Predicate {
	p, err := Matches(pattern)
	if err != nil {
		panic("predicate: " + err.Error())
	}
	return p
}

// MatchesRegexp wraps an already compiled expression.
func MatchesRegexp(re *regexp.Regexp) Predicate {
	return func(input string) bool {
		return re.MatchString(input)
	}
}

// And is true when every predicate is true. Nil predicates are
// treated as false.
func And(ps ...Predicate) Predicate {
	return func(input string) bool {
		if len(ps) == 0 {
			return false
		}
		for _, p := range ps {
			if p == nil || !p(input) {
				return false
			}
		}
		return true
	}
}

// Or is true when at least one predicate is true.
func Or(ps ...Predicate) Predicate {
	return func(input string) bool {
		for _, p := range ps {
			if p != nil && p(input) {
				return true
			}
		}
		return false
	}
}

// Not negates p. A nil p is treated as false, so Not(nil) is true.
func Not(p Predicate) Predicate {
	return func(input string) bool {
		return p == nil || !p(input)
	}
}

// normalizeTerms normalises every term and drops empty ones; an
// empty term would match any input.
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}
