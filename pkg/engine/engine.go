// Package engine ties the evaluator, completion tracker, badge
// engine and notification sink together behind Submit, the single
// entry point for a learner's answer.
package engine

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/evaluator"
	"digital.vasic.defecthunt/pkg/keyed"
	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/metrics"
	"digital.vasic.defecthunt/pkg/notify"
	"digital.vasic.defecthunt/pkg/registry"
	"digital.vasic.defecthunt/pkg/storage"
	"digital.vasic.defecthunt/pkg/tracker"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "digital.vasic.defecthunt/pkg/engine"

// Option configures an Engine.
type Option func(*config)

type config struct {
	sink    notify.Sink
	metrics metrics.EngineMetrics
	log     logging.Logger
	now     func() time.Time
	tracer  trace.TracerProvider
}

// WithSink delivers reward and badge events to s.
func WithSink(s notify.Sink) Option {
	return func(c *config) { c.sink = notify.OrDiscard(s) }
}

// WithMetrics shares m with every component.
func WithMetrics(m metrics.EngineMetrics) Option {
	return func(c *config) { c.metrics = metrics.OrNoop(m) }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *config) { c.log = logging.OrNull(l) }
}

// WithClock sets the time source for completion and award
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithTracerProvider traces Submit and Reevaluate with tp instead
// of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracer = tp }
}

// Outcome is the result of one submission.
type Outcome struct {
	Result         challenge.AttemptResult
	NewlyCompleted bool
	Record         *challenge.CompletionRecord
	Awards         []badge.Award
}

// Progress summarises a learner's state.
type Progress struct {
	LearnerID string                       `json:"learner_id"`
	Completed []challenge.CompletionRecord `json:"completed"`
	Awards    []badge.Award                `json:"awards"`
	Total     int                          `json:"total_challenges"`
}

// Engine is safe for concurrent use. Submissions by one learner
// are serialised from recording through badge evaluation;
// different learners never wait on each other.
type Engine struct {
	registry  registry.Registry
	evaluator *evaluator.Evaluator
	tracker   *tracker.Tracker
	badges    *badge.Engine
	sink      notify.Sink
	log       logging.Logger
	locks     keyed.Mutex
	tracer    trace.Tracer
}

// New wires an Engine over a registry of challenges, a badge
// catalogue and the store holding learner state.
func New(
	reg registry.Registry,
	catalog *badge.Catalog,
	store storage.Store,
	opts ...Option,
) *Engine {
	cfg := config{
		sink:    notify.Discard,
		metrics: metrics.NoopMetrics{},
		log:     logging.NullLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.GetTracerProvider()
	}

	tr := tracker.New(store,
		tracker.WithClock(cfg.now),
		tracker.WithMetrics(cfg.metrics),
	)
	return &Engine{
		registry:  reg,
		evaluator: evaluator.New(reg, evaluator.WithMetrics(cfg.metrics)),
		tracker:   tr,
		badges: badge.NewEngine(catalog, tr, store,
			badge.WithSink(cfg.sink),
			badge.WithClock(cfg.now),
			badge.WithMetrics(cfg.metrics),
			badge.WithLogger(cfg.log),
		),
		sink:   cfg.sink,
		log:    cfg.log,
		tracer: cfg.tracer.Tracer(tracerName),
	}
}

// Submit evaluates input for challenge id on behalf of learnerID.
// A first pass records the completion, emits one reward event and
// runs badge evaluation. Repeat passes and failures change
// nothing. If the completion write fails no event is emitted and
// the call can simply be retried.
//
// When the completion is recorded but badge evaluation fails, the
// returned Outcome still reports NewlyCompleted together with the
// error; Reevaluate retries the badges alone.
func (e *Engine) Submit(
	ctx context.Context,
	learnerID string,
	id challenge.ID,
	input string,
) (Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Submit", trace.WithAttributes(
		attribute.String("learner.id", learnerID),
		attribute.String("challenge.id", string(id)),
	))
	defer span.End()

	out, err := e.submit(ctx, learnerID, id, input)
	span.SetAttributes(
		attribute.Bool("attempt.passed", out.Result.Passed),
		attribute.Bool("attempt.newly_completed", out.NewlyCompleted),
		attribute.Int("badges.awarded", len(out.Awards)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
	}
	return out, err
}

func (e *Engine) submit(
	ctx context.Context,
	learnerID string,
	id challenge.ID,
	input string,
) (Outcome, error) {
	if learnerID == "" {
		return Outcome{}, challenge.ErrInvalidLearner
	}

	result, err := e.evaluator.Evaluate(id, input)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Result: result}

	log := e.log.WithFields(
		logging.LearnerField(learnerID),
		logging.ChallengeField(string(id)),
	)
	if !result.Passed {
		log.Debug("attempt rejected")
		return out, nil
	}

	out, events, err := e.commit(ctx, log, learnerID, result, out)
	// Sinks may block on the network, so delivery happens after the
	// learner's lock is released.
	for _, ev := range events {
		e.sink.Notify(ev)
	}
	return out, err
}

// commit records a passing result and grants badges under the
// learner's lock. It returns the events to deliver: the reward
// event once the completion is stored, followed by badge events
// for awards that were stored.
func (e *Engine) commit(
	ctx context.Context,
	log logging.Logger,
	learnerID string,
	result challenge.AttemptResult,
	out Outcome,
) (Outcome, []notify.Event, error) {
	unlock := e.locks.Lock(learnerID)
	defer unlock()

	rec, err := e.tracker.RecordIfPassed(ctx, learnerID, result)
	if err != nil {
		log.Error("record completion", logging.ErrorField(err))
		return out, nil, fmt.Errorf("submit: %w", err)
	}
	if !rec.NewlyCompleted {
		log.Debug("challenge already completed")
		return out, nil, nil
	}
	out.NewlyCompleted = true
	out.Record = rec.Record
	log.Info("challenge completed")

	events := []notify.Event{
		notify.NewRewardEvent(learnerID, result.ChallengeID, result.RewardToken),
	}
	awards, badgeEvents, err := e.badges.Grant(ctx, learnerID)
	if err != nil {
		return out, events, fmt.Errorf("submit: evaluate awards: %w", err)
	}
	out.Awards = awards
	return out, append(events, badgeEvents...), nil
}

// Check evaluates input without touching learner state.
func (e *Engine) Check(id challenge.ID, input string) (challenge.AttemptResult, error) {
	return e.evaluator.Evaluate(id, input)
}

// Reevaluate runs badge evaluation for learnerID under the
// learner's lock. It is used to recover from a failed award write.
func (e *Engine) Reevaluate(ctx context.Context, learnerID string) ([]badge.Award, error) {
	if learnerID == "" {
		return nil, challenge.ErrInvalidLearner
	}
	ctx, span := e.tracer.Start(ctx, "engine.Reevaluate",
		trace.WithAttributes(attribute.String("learner.id", learnerID)))
	defer span.End()

	unlock := e.locks.Lock(learnerID)
	awards, events, err := e.badges.Grant(ctx, learnerID)
	unlock()
	for _, ev := range events {
		e.sink.Notify(ev)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reevaluate failed")
	}
	span.SetAttributes(attribute.Int("badges.awarded", len(awards)))
	return awards, err
}

// Progress returns the learner's completions and awards.
func (e *Engine) Progress(ctx context.Context, learnerID string) (Progress, error) {
	records, err := e.tracker.Records(ctx, learnerID)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	awards, err := e.badges.Awards(ctx, learnerID)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	return Progress{
		LearnerID: learnerID,
		Completed: records,
		Awards:    awards,
		Total:     e.registry.Count(),
	}, nil
}

// Registry returns the challenge registry.
func (e *Engine) Registry() registry.Registry { return e.registry }

// Tracker returns the completion tracker.
func (e *Engine) Tracker() *tracker.Tracker { return e.tracker }

// Badges returns the badge engine.
func (e *Engine) Badges() *badge.Engine { return e.badges }
