// Package badge holds the badge catalogue and the Badge Criteria
// Engine, which awards badges once a learner's completed
// challenges satisfy their declarative criteria.
package badge

import (
	"errors"
	"time"

	"digital.vasic.defecthunt/pkg/challenge"
)

// Definition describes a badge.
type Definition struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	IconURL     string       `json:"icon_url,omitempty" yaml:"icon_url,omitempty"`
	Criteria    CriteriaSpec `json:"criteria" yaml:"criteria"`

	satisfied Criteria
}

// Compile builds the definition's criteria, checking challenge
// references against known when it is non-nil.
func (d *Definition) Compile(known challenge.IDSet) error {
	if d.Name == "" {
		return &challenge.ConfigurationError{
			Subject: "badge", Message: "name is required",
		}
	}
	c, err := Compile(d.Criteria, known)
	if err != nil {
		var ce *challenge.ConfigurationError
		if errors.As(err, &ce) {
			ce.Subject = "badge " + d.Name
		}
		return err
	}
	d.satisfied = c
	return nil
}

// SatisfiedBy reports whether completed meets the criteria. An
// uncompiled definition is never satisfied.
func (d *Definition) SatisfiedBy(completed challenge.IDSet) bool {
	return d.satisfied != nil && d.satisfied(completed)
}

// Award records that a learner earned a badge. At most one
// exists per (learner, badge) and it is never revoked.
type Award struct {
	LearnerID string    `json:"learner_id"`
	BadgeName string    `json:"badge_name"`
	AwardedAt time.Time `json:"awarded_at"`
}
