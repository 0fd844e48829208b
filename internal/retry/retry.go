// Package retry runs an operation under an exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default policy values: 5 attempts, waits of 4s, 8s, 16s, 32s, never above 64s.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 4 * time.Second
	DefaultMaxDelay    = 64 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy describes how many times to try and how long to wait in between.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration // Wait after the first failed attempt
	Multiplier  float64       // Growth factor applied to each subsequent wait
	MaxDelay    time.Duration // Upper bound for any single wait
}

// DefaultPolicy returns the policy used for SSRN page fetches.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Validate reports an error for a policy that cannot be executed.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return errors.New("delays must not be negative")
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1, got %g", p.Multiplier)
	}
	return nil
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
		if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Sleeper waits for a duration or until the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ClockSleeper sleeps on the real clock.
type ClockSleeper struct{}

// Sleep blocks for d or until ctx is cancelled.
func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error // Error of the last attempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Retrier executes operations according to a Policy.
type Retrier struct {
	Policy  Policy
	Sleeper Sleeper

	// OnRetry, if set, is called after a failed attempt that will be retried.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// New creates a Retrier using the real clock.
func New(p Policy) *Retrier {
	return &Retrier{Policy: p, Sleeper: ClockSleeper{}}
}

// Do calls op until it succeeds or the policy runs out of attempts.
// Context cancellation stops the loop immediately and is returned unwrapped.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := r.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}
	sleeper := r.Sleeper
	if sleeper == nil {
		sleeper = ClockSleeper{}
	}

	var lastErr error
	for attempt := 1; attempt <= r.Policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == r.Policy.MaxAttempts {
			break
		}

		delay := r.Policy.Delay(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt, delay, lastErr)
		}
		if err := sleeper.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &ExhaustedError{Attempts: r.Policy.MaxAttempts, Err: lastErr}
}
