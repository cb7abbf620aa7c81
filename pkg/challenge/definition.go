package challenge

import (
	"strings"

	"digital.vasic.defecthunt/pkg/predicate"
)

// Definition describes a challenge declaratively: what the
// learner is shown, which defect the page hides, how a free-text
// explanation is judged and what reward it unlocks.
type Definition struct {
	ID                ID             `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	Prompt            string         `json:"prompt" yaml:"prompt"`
	DefectDescription string         `json:"defect_description" yaml:"defect_description"`
	Category          string         `json:"category,omitempty" yaml:"category,omitempty"`
	Predicate         predicate.Spec `json:"predicate" yaml:"predicate"`

	// RewardToken is the flag revealed on a passing attempt.
	// It is constant so repeated passes reveal the same value.
	RewardToken string `json:"reward_token" yaml:"reward_token"`

	// Accept, when set, is used instead of compiling Predicate.
	// It lets challenges be defined in code with the predicate
	// combinators directly.
	Accept predicate.Predicate `json:"-" yaml:"-"`
}

// Compile checks the definition and prepares its acceptance
// predicate with the given engine. It returns a
// *ConfigurationError describing the first problem found.
func (d *Definition) Compile(engine *predicate.Engine) error {
	if strings.TrimSpace(string(d.ID)) == "" {
		return &ConfigurationError{
			Subject: "challenge", Message: "id is required",
		}
	}
	if strings.TrimSpace(d.RewardToken) == "" {
		return &ConfigurationError{
			Subject: "challenge " + string(d.ID),
			Message: "reward_token is required",
		}
	}

	if d.Accept != nil && d.Predicate.Type == "" {
		return nil
	}

	if engine == nil {
		engine = predicate.Default
	}
	p, err := engine.Compile(d.Predicate)
	if err != nil {
		return &ConfigurationError{
			Subject: "challenge " + string(d.ID),
			Message: err.Error(),
			Err:     err,
		}
	}
	d.Accept = p
	return nil
}

// Accepts reports whether the normalised input satisfies the
// acceptance predicate. An uncompiled definition accepts nothing.
func (d *Definition) Accepts(normalized string) bool {
	if d.Accept == nil {
		return false
	}
	return d.Accept(normalized)
}
