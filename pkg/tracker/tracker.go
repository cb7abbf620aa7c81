// Package tracker records which challenges each learner has
// completed. For every (learner, challenge) pair the state moves
// once from not attempted to completed and never back; the
// completion records live in a storage.Store.
package tracker

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/keyed"
	"digital.vasic.defecthunt/pkg/metrics"
	"digital.vasic.defecthunt/pkg/storage"
)

// ErrInvalidLearner is returned when the learner ID is empty.
var ErrInvalidLearner = challenge.ErrInvalidLearner

// Recording is the outcome of RecordIfPassed.
type Recording struct {
	// NewlyCompleted is true only for the call that created
	// the completion record.
	NewlyCompleted bool

	// Record is the created record when NewlyCompleted is
	// true, and nil otherwise.
	Record *challenge.CompletionRecord
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source for CompletedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithMetrics records completions and persistence failures on m.
func WithMetrics(m metrics.EngineMetrics) Option {
	return func(t *Tracker) {
		t.metrics = metrics.OrNoop(m)
	}
}

// Tracker is the completion tracker. It is safe for concurrent
// use; updates for one learner are serialised.
type Tracker struct {
	store   storage.Store
	locks   keyed.Mutex
	now     func() time.Time
	metrics metrics.EngineMetrics
}

// New creates a Tracker over store.
func New(store storage.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		now:     time.Now,
		metrics: metrics.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordIfPassed creates a completion record when result passed
// and the learner has not completed the challenge yet. A failing
// result, or one for an already completed challenge, changes
// nothing and reports NewlyCompleted=false. Storage failures are
// returned as *challenge.PersistenceError with nothing written, so
// the call can be retried. A passing result without a challenge ID
// is rejected with *challenge.UnknownChallengeError.
func (t *Tracker) RecordIfPassed(
	ctx context.Context,
	learnerID string,
	result challenge.AttemptResult,
) (Recording, error) {
	if learnerID == "" {
		return Recording{}, ErrInvalidLearner
	}
	if !result.Passed {
		return Recording{}, nil
	}
	if result.ChallengeID == "" {
		return Recording{}, &challenge.UnknownChallengeError{}
	}

	unlock := t.locks.Lock(learnerID)
	defer unlock()

	records, err := t.load(ctx, learnerID)
	if err != nil {
		return Recording{}, err
	}
	for _, r := range records {
		if r.ChallengeID == result.ChallengeID {
			return Recording{}, nil
		}
	}

	rec := challenge.CompletionRecord{
		LearnerID:   learnerID,
		ChallengeID: result.ChallengeID,
		CompletedAt: t.now().UTC(),
	}
	if err := t.save(ctx, learnerID, append(records, rec)); err != nil {
		return Recording{}, err
	}

	t.metrics.RecordCompletion(string(rec.ChallengeID))
	return Recording{NewlyCompleted: true, Record: &rec}, nil
}

// IsCompleted reports whether the learner has completed the
// challenge.
func (t *Tracker) IsCompleted(
	ctx context.Context,
	learnerID string,
	id challenge.ID,
) (bool, error) {
	set, err := t.CompletedChallenges(ctx, learnerID)
	if err != nil {
		return false, err
	}
	return set.Has(id), nil
}

// CompletedChallenges returns the set of challenges the learner
// has completed.
func (t *Tracker) CompletedChallenges(
	ctx context.Context,
	learnerID string,
) (challenge.IDSet, error) {
	records, err := t.Records(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	set := make(challenge.IDSet, len(records))
	for _, r := range records {
		set[r.ChallengeID] = struct{}{}
	}
	return set, nil
}

// Records returns the learner's completion records sorted by
// challenge ID, the order they are stored in.
func (t *Tracker) Records(
	ctx context.Context,
	learnerID string,
) ([]challenge.CompletionRecord, error) {
	if learnerID == "" {
		return nil, ErrInvalidLearner
	}
	return t.load(ctx, learnerID)
}

func (t *Tracker) load(
	ctx context.Context,
	learnerID string,
) ([]challenge.CompletionRecord, error) {
	key := storage.CompletionsKey(learnerID)

	data, ok, err := t.store.Get(ctx, key)
	if err != nil {
		t.metrics.RecordPersistenceFailure("get")
		return nil, &challenge.PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return nil, nil
	}

	var records []challenge.CompletionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.metrics.RecordPersistenceFailure("decode")
		return nil, &challenge.PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return records, nil
}

func (t *Tracker) save(
	ctx context.Context,
	learnerID string,
	records []challenge.CompletionRecord,
) error {
	key := storage.CompletionsKey(learnerID)

	sort.Slice(records, func(i, j int) bool {
		return records[i].ChallengeID < records[j].ChallengeID
	})
	data, err := json.Marshal(records)
	if err != nil {
		return &challenge.PersistenceError{Op: "encode", Key: key, Err: err}
	}

	if err := t.store.Put(ctx, key, data); err != nil {
		t.metrics.RecordPersistenceFailure("put")
		return &challenge.PersistenceError{Op: "put", Key: key, Err: err}
	}
	return nil
}
