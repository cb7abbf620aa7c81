// Package storage defines the key-value collaborator that holds
// learner state (completion records and badge awards) and an
// in-memory implementation. Durable backends live in the sqlite,
// redisstore and postgres subpackages.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is a minimal key-value store. A Put replaces the whole
// value for a key atomically: readers observe either the old or
// the new value, never a mix. Implementations bound their own
// latency and report failures, including timeouts, as errors.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the store's resources.
	Close() error
}

// Key namespaces used by the tracker and the badge engine.
const (
	CompletionsPrefix = "completions/"
	BadgesPrefix      = "badges/"
)

// CompletionsKey returns the key holding a learner's completion
// records.
func CompletionsKey(learnerID string) string {
	return CompletionsPrefix + learnerID
}

// BadgesKey returns the key holding a learner's badge awards.
func BadgesKey(learnerID string) string {
	return BadgesPrefix + learnerID
}
