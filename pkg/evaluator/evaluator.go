// Package evaluator judges a learner's free-text input against a
// challenge's acceptance predicate. Evaluation is pure: the same
// challenge and input always give the same AttemptResult, and no
// learner state is read or written.
package evaluator

import (
	"fmt"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/metrics"
	"digital.vasic.defecthunt/pkg/predicate"
)

// Definitions looks up challenge definitions. registry.Registry
// satisfies it.
type Definitions interface {
	Get(id challenge.ID) (*challenge.Definition, error)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMetrics records every verdict on m.
func WithMetrics(m metrics.EngineMetrics) Option {
	return func(e *Evaluator) {
		e.metrics = metrics.OrNoop(m)
	}
}

// Evaluator is the attempt evaluator. It is safe for concurrent
// use as long as its Definitions are.
type Evaluator struct {
	defs    Definitions
	metrics metrics.EngineMetrics
}

// New creates an Evaluator over the given definitions.
func New(defs Definitions, opts ...Option) *Evaluator {
	e := &Evaluator{
		defs:    defs,
		metrics: metrics.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate judges rawInput against challenge id. It returns a
// *challenge.UnknownChallengeError if the challenge does not
// exist. Blank input never passes, whatever the predicate.
func (e *Evaluator) Evaluate(
	id challenge.ID,
	rawInput string,
) (challenge.AttemptResult, error) {
	def, err := e.defs.Get(id)
	if err != nil {
		return challenge.AttemptResult{}, fmt.Errorf("evaluate: %w", err)
	}

	return e.judge(def, rawInput), nil
}

// Judge evaluates rawInput against def directly, bypassing the
// lookup. def must have been compiled.
func (e *Evaluator) Judge(
	def *challenge.Definition,
	rawInput string,
) challenge.AttemptResult {
	return e.judge(def, rawInput)
}

func (e *Evaluator) judge(
	def *challenge.Definition,
	rawInput string,
) challenge.AttemptResult {
	normalized := predicate.Normalize(rawInput)
	result := challenge.AttemptResult{
		ChallengeID:     def.ID,
		NormalizedInput: normalized,
	}

	if normalized != "" && def.Accepts(normalized) {
		result.Passed = true
		result.RewardToken = def.RewardToken
	}

	e.metrics.RecordAttempt(string(def.ID), result.Passed)
	return result
}
