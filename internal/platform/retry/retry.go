// Package retry implements a generic exponential-backoff decorator for
// transient failures against remote collaborators. Ledger logic never
// retries on its own; callers that talk to the network wrap those calls here.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls the backoff schedule.
type Policy struct {
	Attempts    int
	InitialWait time.Duration
	MaxWait     time.Duration
	// Retryable reports whether the error is transient. When nil every
	// error is treated as transient.
	Retryable func(error) bool
}

// DefaultPolicy is three attempts with doubling delay, capped at 15s.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    3,
		InitialWait: 1500 * time.Millisecond,
		MaxWait:     15 * time.Second,
	}
}

// ErrExhausted wraps the last error once all attempts are spent.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Do invokes fn until it succeeds, the error is not retryable, the context
// is cancelled, or the attempt budget runs out.
func Do(ctx context.Context, policy Policy, fn func(context.Context) error) error {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	wait := policy.InitialWait
	if wait <= 0 {
		wait = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			wait *= 2
			if policy.MaxWait > 0 && wait > policy.MaxWait {
				wait = policy.MaxWait
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if policy.Retryable != nil && !policy.Retryable(lastErr) {
			return lastErr
		}
	}
	return errors.Join(ErrExhausted, lastErr)
}
