package storage

import (
	"context"
	"errors"
	"time"

	"digital.vasic.defecthunt/pkg/logging"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilienceConfig tunes NewResilient.
type ResilienceConfig struct {
	// Attempts is the number of tries per call, at least 1.
	Attempts int

	// InitialDelay is the first backoff; it doubles up to
	// MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// FailureThreshold consecutive failures open the breaker for
	// OpenTimeout. Zero disables the breaker.
	FailureThreshold int
	OpenTimeout      time.Duration

	Logger logging.Logger
}

// DefaultResilienceConfig suits a store on the local network.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Attempts:         3,
		InitialDelay:     50 * time.Millisecond,
		MaxDelay:         time.Second,
		FailureThreshold: 5,
		OpenTimeout:      10 * time.Second,
	}
}

type storeResult struct {
	data []byte
	ok   bool
}

// Resilient retries failed Get and Put calls with exponential
// backoff and stops calling an unhealthy backend for a while
// once it keeps failing. A Put rewrites the whole value, so
// retrying it is safe.
type Resilient struct {
	inner   Store
	retrier retry.Retry[storeResult]
	breaker circuitbreaker.CircuitBreaker[storeResult]
}

var _ Store = (*Resilient)(nil)

// NewResilient wraps inner.
func NewResilient(inner Store, cfg ResilienceConfig) *Resilient {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	log := logging.OrNull(cfg.Logger)

	r := &Resilient{inner: inner}
	r.retrier = retry.New[storeResult](retry.Config{
		MaxAttempts:   cfg.Attempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   retryable,
	})

	if cfg.FailureThreshold > 0 {
		threshold := cfg.FailureThreshold
		r.breaker = circuitbreaker.New[storeResult](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.OpenTimeout,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("store circuit breaker state change",
					logging.StringField("from", from.String()),
					logging.StringField("to", to.String()),
				)
			},
		})
	}
	return r
}

func retryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrClosed)
}

func (r *Resilient) do(
	ctx context.Context,
	op func(ctx context.Context) (storeResult, error),
) (storeResult, error) {
	attempt := func(ctx context.Context) (storeResult, error) {
		return r.retrier.Do(ctx, op)
	}
	if r.breaker != nil {
		return r.breaker.Execute(ctx, attempt)
	}
	return attempt(ctx)
}

func (r *Resilient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := r.do(ctx, func(ctx context.Context) (storeResult, error) {
		data, ok, err := r.inner.Get(ctx, key)
		return storeResult{data: data, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	return res.data, res.ok, nil
}

func (r *Resilient) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.do(ctx, func(ctx context.Context) (storeResult, error) {
		return storeResult{}, r.inner.Put(ctx, key, value)
	})
	return err
}

// Close closes the wrapped store.
func (r *Resilient) Close() error {
	return r.inner.Close()
}
