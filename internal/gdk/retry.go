package gdk

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// RetryConfig configures how often connecting to the bridge is attempted.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	BaseDelay   time.Duration // Initial delay between retries
	MaxDelay    time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns 3 attempts with delays of about 500ms and 1s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Retry runs operation until it succeeds, fails with an error that is not
// retryable, or runs out of attempts. ctx cancels the wait between attempts.
func Retry[T any](ctx context.Context, cfg RetryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return result, err
		}

		// No delay after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			timer := time.NewTimer(backoff(attempt, cfg.BaseDelay, cfg.MaxDelay))
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if cfg.MaxAttempts == 1 {
		return result, err
	}
	return result, fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, err)
}

// backoff doubles baseDelay per attempt up to maxDelay, with jitter in [d/2, d).
func backoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: jitter does not need cryptographic randomness
}

// IsRetryable reports whether err is a transport failure worth another
// attempt. Backend-reported errors and context cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, greenerr.ErrNetworkError)
}
