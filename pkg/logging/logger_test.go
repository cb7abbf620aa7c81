package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var (
	_ Logger = NullLogger{}
	_ Logger = (*ZapLogger)(nil)
	_ Logger = (*RedactingLogger)(nil)
	_ Logger = (*TeeLogger)(nil)
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"learner", LearnerField("alice"), KeyLearner, "alice"},
		{"challenge", ChallengeField("c1"), KeyChallenge, "c1"},
		{"badge", BadgeField("explorer"), KeyBadge, "explorer"},
		{"string", StringField("store", "sqlite"), "store", "sqlite"},
		{"int", IntField("workers", 4), "workers", 4},
		{"bool", BoolField("passed", false), "passed", false},
		{"duration", DurationField("took", 1500*time.Millisecond), "took", "1.5s"},
		{"error", ErrorField(errors.New("disk full")), KeyError, "disk full"},
		{"nil error", ErrorField(nil), KeyError, "<nil>"},
		{"any", LogField("ids", []string{"c1"}), "ids", []string{"c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.field.Key)
			assert.Equal(t, tt.value, tt.field.Value)
		})
	}
}

func TestOrNull(t *testing.T) {
	assert.Equal(t, NullLogger{}, OrNull(nil))

	zl, _ := observed(zapcore.InfoLevel)
	assert.Same(t, zl, OrNull(zl))
}

func TestNullLogger(t *testing.T) {
	var l Logger = NullLogger{}
	assert.NotPanics(t, func() {
		l.Debug("d", LearnerField("a"))
		l.Info("i")
		l.Warn("w")
		l.Error("e", ErrorField(nil))
	})
	assert.Equal(t, NullLogger{}, l.WithFields(BadgeField("b")))
	assert.NoError(t, l.Close())
}

func TestTeeLogger_Fanout(t *testing.T) {
	a, aLogs := observed(zapcore.DebugLevel)
	b, bLogs := observed(zapcore.WarnLevel)
	l := NewTeeLogger(a, nil, b)

	child := l.WithFields(LearnerField("bob"))
	child.Info("submitted")
	child.Error("store down", ErrorField(errors.New("timeout")))

	assert.Equal(t, 2, aLogs.Len())
	require.Equal(t, 1, bLogs.Len(), "b filters below warn")
	e := bLogs.All()[0]
	assert.Equal(t, "store down", e.Message)
	assert.Equal(t, "bob", e.ContextMap()[KeyLearner])
	assert.Equal(t, "timeout", e.ContextMap()[KeyError])
}

func TestNewTeeLogger_Collapses(t *testing.T) {
	zl, _ := observed(zapcore.InfoLevel)
	assert.Same(t, zl, NewTeeLogger(nil, zl))
	assert.Equal(t, NullLogger{}, NewTeeLogger())
}

func TestTeeLogger_CloseJoinsErrors(t *testing.T) {
	first := new(mockLogger)
	second := new(mockLogger)
	first.On("Close").Return(errors.New("first"))
	second.On("Close").Return(errors.New("second"))

	err := NewTeeLogger(first, second).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestNewZapFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt.log")

	l, err := NewZapFileLogger(path, false)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("attempt", LearnerField("alice"), BoolField("passed", true))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"attempt"`)
	assert.Contains(t, lines[0], `"learner":"alice"`)
}

func TestNewZapFileLogger_BadPath(t *testing.T) {
	_, err := NewZapFileLogger(filepath.Join(t.TempDir(), "missing", "hunt.log"), false)
	assert.Error(t, err)
}
