// Package metrics records engine counters: attempts, completions,
// badge awards and persistence failures.
package metrics

// EngineMetrics defines the interface for recording engine
// metrics.
type EngineMetrics interface {
	// RecordAttempt records an evaluated attempt.
	RecordAttempt(challengeID string, passed bool)
	// RecordCompletion records a first completion.
	RecordCompletion(challengeID string)
	// RecordAward records a badge award.
	RecordAward(badgeName string)
	// RecordPersistenceFailure records a failed storage
	// operation.
	RecordPersistenceFailure(op string)
}

// NoopMetrics is a no-op implementation of EngineMetrics useful
// for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordAttempt(_ string, _ bool)    {}
func (NoopMetrics) RecordCompletion(_ string)         {}
func (NoopMetrics) RecordAward(_ string)              {}
func (NoopMetrics) RecordPersistenceFailure(_ string) {}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m EngineMetrics) EngineMetrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
