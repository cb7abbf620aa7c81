package badge

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/keyed"
	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/metrics"
	"digital.vasic.defecthunt/pkg/notify"
	"digital.vasic.defecthunt/pkg/storage"
)

// CompletionSource reports a learner's completed challenges.
// *tracker.Tracker satisfies it.
type CompletionSource interface {
	CompletedChallenges(ctx context.Context, learnerID string) (challenge.IDSet, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink delivers badge events to s.
func WithSink(s notify.Sink) Option {
	return func(e *Engine) {
		e.sink = notify.OrDiscard(s)
	}
}

// WithClock sets the time source for AwardedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics records awards and persistence failures on m.
func WithMetrics(m metrics.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = metrics.OrNoop(m)
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.log = logging.OrNull(l)
	}
}

// Engine is the Badge Criteria Engine.
type Engine struct {
	catalog     *Catalog
	completions CompletionSource
	store       storage.Store
	sink        notify.Sink
	locks       keyed.Mutex
	now         func() time.Time
	metrics     metrics.EngineMetrics
	log         logging.Logger
}

// NewEngine creates an Engine. Awards are kept in store under
// storage.BadgesKey.
func NewEngine(
	catalog *Catalog,
	completions CompletionSource,
	store storage.Store,
	opts ...Option,
) *Engine {
	e := &Engine{
		catalog:     catalog,
		completions: completions,
		store:       store,
		sink:        notify.Discard,
		now:         time.Now,
		metrics:     metrics.NoopMetrics{},
		log:         logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateAwards checks every badge the learner does not hold yet,
// in name order, against the learner's completed challenges. The
// newly satisfied badges are persisted together in one write and
// only then announced to the sink, in the same order. Calling it
// again without new completions awards nothing.
func (e *Engine) EvaluateAwards(
	ctx context.Context,
	learnerID string,
) ([]Award, error) {
	awarded, events, err := e.Grant(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		e.sink.Notify(ev)
	}
	return awarded, nil
}

// Grant is EvaluateAwards without the sink: it persists the new
// awards and returns the badge events for the caller to deliver
// once it has released its own locks. Nothing is returned when the
// write fails.
func (e *Engine) Grant(
	ctx context.Context,
	learnerID string,
) ([]Award, []notify.Event, error) {
	if learnerID == "" {
		return nil, nil, challenge.ErrInvalidLearner
	}

	unlock := e.locks.Lock(learnerID)
	defer unlock()

	held, err := e.load(ctx, learnerID)
	if err != nil {
		return nil, nil, err
	}
	completed, err := e.completions.CompletedChallenges(ctx, learnerID)
	if err != nil {
		return nil, nil, err
	}

	owned := make(map[string]struct{}, len(held))
	for _, a := range held {
		owned[a.BadgeName] = struct{}{}
	}

	now := e.now().UTC()
	var (
		awarded []Award
		defs    []*Definition
	)
	for _, def := range e.catalog.List() {
		if _, ok := owned[def.Name]; ok {
			continue
		}
		if !def.SatisfiedBy(completed) {
			continue
		}
		awarded = append(awarded, Award{
			LearnerID: learnerID,
			BadgeName: def.Name,
			AwardedAt: now,
		})
		defs = append(defs, def)
	}
	if len(awarded) == 0 {
		return nil, nil, nil
	}

	if err := e.save(ctx, learnerID, append(held, awarded...)); err != nil {
		return nil, nil, err
	}

	events := make([]notify.Event, len(awarded))
	for i, a := range awarded {
		e.metrics.RecordAward(a.BadgeName)
		e.log.Info("badge awarded",
			logging.LearnerField(learnerID),
			logging.BadgeField(a.BadgeName),
		)
		events[i] = notify.NewBadgeEvent(
			learnerID, defs[i].Name, defs[i].Description, defs[i].IconURL,
		)
	}
	return awarded, events, nil
}

// Awards returns the learner's awards sorted by badge name.
func (e *Engine) Awards(ctx context.Context, learnerID string) ([]Award, error) {
	if learnerID == "" {
		return nil, challenge.ErrInvalidLearner
	}
	return e.load(ctx, learnerID)
}

// HasBadge reports whether the learner holds the named badge.
// Unknown names are *challenge.UnknownBadgeError.
func (e *Engine) HasBadge(
	ctx context.Context,
	learnerID, name string,
) (bool, error) {
	if _, err := e.catalog.Get(name); err != nil {
		return false, err
	}
	awards, err := e.Awards(ctx, learnerID)
	if err != nil {
		return false, err
	}
	for _, a := range awards {
		if a.BadgeName == name {
			return true, nil
		}
	}
	return false, nil
}

// Catalog returns the engine's badge catalogue.
func (e *Engine) Catalog() *Catalog { return e.catalog }

func (e *Engine) load(ctx context.Context, learnerID string) ([]Award, error) {
	key := storage.BadgesKey(learnerID)

	data, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.metrics.RecordPersistenceFailure("get")
		return nil, &challenge.PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return nil, nil
	}

	var awards []Award
	if err := json.Unmarshal(data, &awards); err != nil {
		e.metrics.RecordPersistenceFailure("decode")
		return nil, &challenge.PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return awards, nil
}

func (e *Engine) save(ctx context.Context, learnerID string, awards []Award) error {
	key := storage.BadgesKey(learnerID)

	sort.SliceStable(awards, func(i, j int) bool {
		return awards[i].BadgeName < awards[j].BadgeName
	})
	data, err := json.Marshal(awards)
	if err != nil {
		return &challenge.PersistenceError{Op: "encode", Key: key, Err: err}
	}

	if err := e.store.Put(ctx, key, data); err != nil {
		e.metrics.RecordPersistenceFailure("put")
		e.log.Error("persist badge awards",
			logging.LearnerField(learnerID),
			logging.ErrorField(err),
		)
		return &challenge.PersistenceError{Op: "put", Key: key, Err: err}
	}
	return nil
}
