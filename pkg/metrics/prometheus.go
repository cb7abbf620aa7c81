package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// PrometheusMetrics implements EngineMetrics with in-memory
// counters and can write them in the Prometheus text exposition
// format. Scraping is left to the host application.
type PrometheusMetrics struct {
	mu          sync.Mutex
	attempts    map[attemptKey]int
	completions map[string]int
	awards      map[string]int
	failures    map[string]int
}

type attemptKey struct {
	challenge string
	passed    bool
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		attempts:    make(map[attemptKey]int),
		completions: make(map[string]int),
		awards:      make(map[string]int),
		failures:    make(map[string]int),
	}
}

func (m *PrometheusMetrics) RecordAttempt(challengeID string, passed bool) {
	m.mu.Lock()
	m.attempts[attemptKey{challengeID, passed}]++
	m.mu.Unlock()
}

func (m *PrometheusMetrics) RecordCompletion(challengeID string) {
	m.mu.Lock()
	m.completions[challengeID]++
	m.mu.Unlock()
}

func (m *PrometheusMetrics) RecordAward(badgeName string) {
	m.mu.Lock()
	m.awards[badgeName]++
	m.mu.Unlock()
}

func (m *PrometheusMetrics) RecordPersistenceFailure(op string) {
	m.mu.Lock()
	m.failures[op]++
	m.mu.Unlock()
}

// AttemptCount returns the attempts recorded for a challenge
// with the given outcome.
func (m *PrometheusMetrics) AttemptCount(challengeID string, passed bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[attemptKey{challengeID, passed}]
}

// CompletionCount returns the completions recorded for a
// challenge.
func (m *PrometheusMetrics) CompletionCount(challengeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completions[challengeID]
}

// AwardCount returns the awards recorded for a badge.
func (m *PrometheusMetrics) AwardCount(badgeName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awards[badgeName]
}

// FailureCount returns the persistence failures recorded for an
// operation.
func (m *PrometheusMetrics) FailureCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[op]
}

// WriteTo writes all counters in the Prometheus text format.
// Series are sorted so the output is stable.
func (m *PrometheusMetrics) WriteTo(w io.Writer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	writeHeader(&b, "defecthunt_attempts_total", "Evaluated attempts.")
	keys := make([]attemptKey, 0, len(m.attempts))
	for k := range m.attempts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].challenge != keys[j].challenge {
			return keys[i].challenge < keys[j].challenge
		}
		return !keys[i].passed && keys[j].passed
	})
	for _, k := range keys {
		result := "failed"
		if k.passed {
			result = "passed"
		}
		fmt.Fprintf(&b, "defecthunt_attempts_total{challenge=%q,result=%q} %d\n",
			k.challenge, result, m.attempts[k])
	}

	writeHeader(&b, "defecthunt_completions_total", "First completions.")
	for _, id := range sortedKeys(m.completions) {
		fmt.Fprintf(&b, "defecthunt_completions_total{challenge=%q} %d\n",
			id, m.completions[id])
	}

	writeHeader(&b, "defecthunt_badge_awards_total", "Badge awards.")
	for _, name := range sortedKeys(m.awards) {
		fmt.Fprintf(&b, "defecthunt_badge_awards_total{badge=%q} %d\n",
			name, m.awards[name])
	}

	writeHeader(&b, "defecthunt_persistence_failures_total", "Failed storage operations.")
	for _, op := range sortedKeys(m.failures) {
		fmt.Fprintf(&b, "defecthunt_persistence_failures_total{op=%q} %d\n",
			op, m.failures[op])
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeHeader(b *strings.Builder, name, help string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
