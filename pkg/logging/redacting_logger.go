package logging

import (
	"regexp"
	"strings"
)

// RewardTokenPattern matches reward tokens of the form flag{...}.
var RewardTokenPattern = regexp.MustCompile(`flag\{[^}\s]*\}`)

// minSecretLen is the shortest secret worth masking. Shorter
// values would blank out ordinary words.
const minSecretLen = 5

// RedactingLogger masks configured secrets, and optionally reward
// tokens, in messages and string field values before handing the
// entry to the wrapped Logger.
type RedactingLogger struct {
	inner    Logger
	secrets  []string
	patterns []*regexp.Regexp
}

// NewRedactingLogger wraps inner. Secrets shorter than five bytes
// are ignored.
func NewRedactingLogger(inner Logger, secrets ...string) *RedactingLogger {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) >= minSecretLen {
			kept = append(kept, s)
		}
	}
	return &RedactingLogger{inner: OrNull(inner), secrets: kept}
}

// NewRewardRedactingLogger is NewRedactingLogger plus masking of
// every RewardTokenPattern match, so a learner's reward never
// reaches a log sink in clear text.
func NewRewardRedactingLogger(inner Logger, secrets ...string) *RedactingLogger {
	r := NewRedactingLogger(inner, secrets...)
	r.patterns = append(r.patterns, RewardTokenPattern)
	return r
}

func (r *RedactingLogger) scrub(s string) string {
	for _, secret := range r.secrets {
		if strings.Contains(s, secret) {
			s = strings.ReplaceAll(s, secret, mask(secret))
		}
	}
	for _, p := range r.patterns {
		s = p.ReplaceAllStringFunc(s, mask)
	}
	return s
}

func (r *RedactingLogger) scrubFields(fields []Field) []Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		if s, ok := f.Value.(string); ok {
			out[i].Value = r.scrub(s)
		}
	}
	return out
}

// mask keeps the first four bytes of s and stars the rest. Values
// of four bytes or fewer are starred entirely.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (r *RedactingLogger) Info(msg string, fields ...Field) {
	r.inner.Info(r.scrub(msg), r.scrubFields(fields)...)
}

func (r *RedactingLogger) Warn(msg string, fields ...Field) {
	r.inner.Warn(r.scrub(msg), r.scrubFields(fields)...)
}

func (r *RedactingLogger) Error(msg string, fields ...Field) {
	r.inner.Error(r.scrub(msg), r.scrubFields(fields)...)
}

func (r *RedactingLogger) Debug(msg string, fields ...Field) {
	r.inner.Debug(r.scrub(msg), r.scrubFields(fields)...)
}

// WithFields scrubs the default fields once, up front, and keeps
// masking on the child.
func (r *RedactingLogger) WithFields(fields ...Field) Logger {
	return &RedactingLogger{
		inner:    r.inner.WithFields(r.scrubFields(fields)...),
		secrets:  r.secrets,
		patterns: r.patterns,
	}
}

func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}
