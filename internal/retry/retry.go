// Package retry provides a single bounded exponential-backoff policy so
// retry behavior is configured in one place instead of per call-site
// loops, and is testable away from network code.
package retry

import (
	"context"
	"time"

	"laliga/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Config parameterizes a retry policy.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the backoff before the second attempt; each further
	// attempt doubles it.
	BaseDelay time.Duration
	// Retryable decides whether a failure is worth another attempt.
	// A nil predicate retries everything.
	Retryable func(error) bool
}

// DefaultConfig matches the upstream fetch policy: three attempts with
// a one-second base delay.
func DefaultConfig(retryable func(error) bool) Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Second, Retryable: retryable}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	return c
}

// Do runs op under the policy. On failure it sleeps
// BaseDelay * 2^(attempt-1) and tries again, up to MaxAttempts, as long
// as the error is retryable. The final error is propagated unchanged.
// Backoff sleeps abort as soon as ctx is cancelled.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := cfg.BaseDelay * time.Duration(1<<uint(attempt-2))
			log.Debug().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying after backoff")
			metrics.RecordRetry()

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, lastErr
		}
	}

	return zero, lastErr
}
