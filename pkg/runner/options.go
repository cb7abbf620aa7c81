package runner

import (
	"digital.vasic.defecthunt/pkg/logging"
)

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets how many learners are replayed at once.
// Values below 1 are treated as 1.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		r.log = logging.OrNull(l)
	}
}

// WithStopOnError aborts the whole replay at the first failed
// submission. By default failures are recorded per result and
// the replay continues.
func WithStopOnError() Option {
	return func(r *Runner) {
		r.stopOnError = true
	}
}

// WithPostHook adds a hook called after every submission. Hooks
// run on the goroutine replaying that learner.
func WithPostHook(h Hook) Option {
	return func(r *Runner) {
		r.postHooks = append(r.postHooks, h)
	}
}
