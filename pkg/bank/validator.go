package bank

import (
	"errors"
	"fmt"

	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/predicate"
)

// ValidationError represents a validation issue found in a bank file.
type ValidationError struct {
	Section string // "challenges", "badges" or "" for file-level issues
	Index   int    // -1 if not applicable
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d].%s: %s", e.Section, e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFile validates a bank file with predicate.Default and
// returns all errors found.
func ValidateFile(path string) []ValidationError {
	file, err := ReadFile(path)
	if err != nil {
		var ce *challenge.ConfigurationError
		if errors.As(err, &ce) {
			return []ValidationError{{Field: "format", Message: ce.Message, Index: -1}}
		}
		return []ValidationError{{Field: "file", Message: err.Error(), Index: -1}}
	}
	return Validate(file, nil)
}

// Validate checks every challenge and badge in file. Predicates
// are compiled with engine, or predicate.Default when nil.
func Validate(file *File, engine *predicate.Engine) []ValidationError {
	var errs []ValidationError
	add := func(section string, i int, field, format string, args ...any) {
		errs = append(errs, ValidationError{
			Section: section, Index: i, Field: field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if file.Version == "" {
		add("", -1, "version", "version is required")
	}
	if engine == nil {
		engine = predicate.Default
	}

	ids := make(challenge.IDSet)
	for i, ch := range file.Challenges {
		switch {
		case ch.ID == "":
			add("challenges", i, "id", "challenge ID is required")
		case ids.Has(ch.ID):
			add("challenges", i, "id", "duplicate ID: %s", ch.ID)
		default:
			ids[ch.ID] = struct{}{}
		}

		if ch.Name == "" {
			add("challenges", i, "name", "challenge name is required")
		}
		if ch.RewardToken == "" {
			add("challenges", i, "reward_token", "reward token is required")
		}
		if _, err := engine.Compile(ch.Predicate); err != nil {
			add("challenges", i, "predicate", "%v", err)
		}
	}

	names := make(map[string]bool)
	for i, b := range file.Badges {
		switch {
		case b.Name == "":
			add("badges", i, "name", "badge name is required")
		case names[b.Name]:
			add("badges", i, "name", "duplicate badge name: %s", b.Name)
		default:
			names[b.Name] = true
		}

		if _, err := badge.Compile(b.Criteria, ids); err != nil {
			var ce *challenge.ConfigurationError
			msg := err.Error()
			if errors.As(err, &ce) {
				msg = ce.Message
			}
			add("badges", i, "criteria", "%s", msg)
		}
	}

	return errs
}
