package logging

import "time"

// Field keys shared across packages so log queries stay stable.
const (
	KeyLearner   = "learner"
	KeyChallenge = "challenge"
	KeyBadge     = "badge"
	KeyError     = "error"
)

// LogField pairs an arbitrary key with value.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// DurationField records d as its String form so every backend
// renders it the same way.
func DurationField(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

// LearnerField tags an entry with the learner it concerns.
func LearnerField(id string) Field {
	return Field{Key: KeyLearner, Value: id}
}

// ChallengeField tags an entry with a challenge identifier.
func ChallengeField(id string) Field {
	return Field{Key: KeyChallenge, Value: id}
}

// BadgeField tags an entry with a badge name.
func BadgeField(name string) Field {
	return Field{Key: KeyBadge, Value: name}
}

// ErrorField stores err's message under "error". A nil err is
// rendered as "<nil>" rather than dropped, so the key is always
// present.
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: KeyError, Value: "<nil>"}
	}
	return Field{Key: KeyError, Value: err.Error()}
}
