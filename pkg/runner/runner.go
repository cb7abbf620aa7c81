// Package runner replays batches of recorded submissions through
// the engine. Submissions of one learner are applied in their
// original order; different learners run in parallel.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/logging"
)

// Submission is one recorded answer.
type Submission struct {
	LearnerID   string       `json:"learner_id"`
	ChallengeID challenge.ID `json:"challenge_id"`
	Input       string       `json:"input"`
}

// Result is the outcome of replaying one submission. Index is its
// position in the input batch.
type Result struct {
	Index      int
	Submission Submission
	Outcome    engine.Outcome
	Err        error
}

// Submitter accepts a learner's answer. *engine.Engine satisfies
// it.
type Submitter interface {
	Submit(
		ctx context.Context,
		learnerID string,
		id challenge.ID,
		input string,
	) (engine.Outcome, error)
}

// Hook is invoked after each submission has been replayed.
type Hook func(ctx context.Context, res Result)

// Runner replays submissions.
type Runner struct {
	submitter   Submitter
	concurrency int
	stopOnError bool
	postHooks   []Hook
	log         logging.Logger
}

// New creates a Runner over submitter.
func New(submitter Submitter, opts ...Option) *Runner {
	r := &Runner{
		submitter:   submitter,
		concurrency: 4,
		log:         logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay submits every submission and returns one Result per
// input, in input order. Submissions that were never attempted
// because ctx was cancelled or the replay stopped carry the
// cancellation error. The returned error is the first failure
// when WithStopOnError is set, or the context error.
func (r *Runner) Replay(ctx context.Context, subs []Submission) ([]Result, error) {
	results := make([]Result, len(subs))
	for i, s := range subs {
		results[i] = Result{Index: i, Submission: s}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, indices := range groupByLearner(subs) {
		indices := indices
		g.Go(func() error {
			return r.replayLearner(gctx, subs, indices, results)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

func (r *Runner) replayLearner(
	ctx context.Context,
	subs []Submission,
	indices []int,
	results []Result,
) error {
	for n, i := range indices {
		if err := ctx.Err(); err != nil {
			for _, rest := range indices[n:] {
				results[rest].Err = err
			}
			return nil
		}

		s := subs[i]
		out, err := r.submitter.Submit(ctx, s.LearnerID, s.ChallengeID, s.Input)
		results[i].Outcome = out
		results[i].Err = err

		for _, h := range r.postHooks {
			h(ctx, results[i])
		}

		if err != nil {
			r.log.Warn("replayed submission failed",
				logging.IntField("index", i),
				logging.LearnerField(s.LearnerID),
				logging.ChallengeField(string(s.ChallengeID)),
				logging.ErrorField(err),
			)
			if r.stopOnError {
				for _, rest := range indices[n+1:] {
					results[rest].Err = context.Canceled
				}
				return fmt.Errorf("submission %d: %w", i, err)
			}
		}
	}
	return nil
}

// groupByLearner returns the submission indices of each learner,
// learners in order of first appearance.
func groupByLearner(subs []Submission) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i, s := range subs {
		g, ok := pos[s.LearnerID]
		if !ok {
			g = len(groups)
			pos[s.LearnerID] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
