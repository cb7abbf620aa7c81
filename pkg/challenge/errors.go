package challenge

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match them with
// errors.Is so callers can branch on the category alone.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrUnknownChallenge   = errors.New("unknown challenge")
	ErrUnknownBadge       = errors.New("unknown badge")
	ErrDuplicateChallenge = errors.New("duplicate challenge")
	ErrPersistence        = errors.New("persistence error")
	ErrInvalidLearner     = errors.New("learner id is required")
)

// ConfigurationError reports a malformed challenge, predicate,
// badge or criteria found while building the configuration. It is
// fatal at startup.
type ConfigurationError struct {
	Subject string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Subject, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownChallengeError is returned when a caller references a
// challenge ID that is not registered.
type UnknownChallengeError struct {
	ID ID
}

func (e *UnknownChallengeError) Error() string {
	if e.ID == "" {
		return "challenge id is required"
	}
	return fmt.Sprintf("challenge not found: %s", e.ID)
}

func (e *UnknownChallengeError) Is(target error) bool {
	return target == ErrUnknownChallenge
}

// UnknownBadgeError is returned when a caller references a badge
// name that is not in the catalogue.
type UnknownBadgeError struct {
	Name string
}

func (e *UnknownBadgeError) Error() string {
	return fmt.Sprintf("badge not found: %s", e.Name)
}

func (e *UnknownBadgeError) Is(target error) bool {
	return target == ErrUnknownBadge
}

// DuplicateChallengeError is returned when a challenge ID is
// registered twice.
type DuplicateChallengeError struct {
	ID ID
}

func (e *DuplicateChallengeError) Error() string {
	return fmt.Sprintf("challenge already registered: %s", e.ID)
}

func (e *DuplicateChallengeError) Is(target error) bool {
	return target == ErrDuplicateChallenge
}

// PersistenceError wraps a storage failure. The operation that
// returned it made no change, so retrying is safe.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
