package retry

import (
	"context"
	"time"

	ai "github.com/codypharm/pharma-sidekick"
)

// Do executes the given function with retry logic.
// Only errors categorized as transient (see [ai.IsTransient]) are retried;
// anything else is returned immediately. Context cancellation is respected
// during backoff waits. When the server suggests a delay via Retry-After,
// that delay is used instead of the computed backoff.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !ai.IsTransient(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			delay := cfg.Delay(attempt)
			if suggested := ai.RetryAfterOf(err); suggested > 0 {
				delay = suggested
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}
