package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics_ImplementsInterface(t *testing.T) {
	var _ EngineMetrics = NoopMetrics{}
	m := NoopMetrics{}
	m.RecordAttempt("c1", true)
	m.RecordCompletion("c1")
	m.RecordAward("b")
	m.RecordPersistenceFailure("put")
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopMetrics{}, OrNoop(nil))

	p := NewPrometheusMetrics()
	assert.Same(t, p, OrNoop(p))
}
