package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff retries with geometrically growing delays.
type Backoff struct {
	Attempts   int
	Initial    time.Duration
	Multiplier float64

	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultBackoff is five attempts starting at one second, growing by 1.5.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 5, Initial: time.Second, Multiplier: 1.5}
}

// Delays returns the wait after each failed attempt.
func (b Backoff) Delays() []time.Duration {
	if b.Attempts <= 0 {
		return nil
	}
	out := make([]time.Duration, 0, b.Attempts)
	delay := float64(b.Initial)
	for i := 0; i < b.Attempts; i++ {
		out = append(out, time.Duration(delay))
		delay *= b.Multiplier
	}
	return out
}

type stopError struct{ err error }

func (e stopError) Error() string { return e.err.Error() }
func (e stopError) Unwrap() error { return e.err }

// Stop marks err as not worth retrying. Retry returns it unwrapped without
// waiting.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return stopError{err: err}
}

// Retry calls fn until it succeeds or every attempt has failed, waiting the
// next delay after each failure. It returns the last error.
func (b Backoff) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := b.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var lastErr error
	for attempt, delay := range b.Delays() {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		var stop stopError
		if errors.As(lastErr, &stop) {
			return stop.err
		}
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("attempt %d: %w", attempt+1, lastErr)
		}
	}
	if lastErr == nil {
		return fmt.Errorf("no attempts configured")
	}
	return fmt.Errorf("giving up after %d attempts: %w", b.Attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
