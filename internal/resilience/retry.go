package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retries with exponential backoff and jitter.
type Policy struct {
	// Attempts is the total number of tries. 1 disables retrying.
	Attempts int
	// Backoff is the delay before the first retry; it doubles each time up to
	// MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Jitter is the +/- fraction applied to each delay.
	Jitter float64
	// Retryable overrides IsTransient.
	Retryable func(error) bool
	// OnRetry runs before each sleep.
	OnRetry func(attempt int, err error)
}

// NewPolicy returns a policy making n attempts with the default backoff.
func NewPolicy(n int) Policy {
	return Policy{
		Attempts:   n,
		Backoff:    250 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Jitter:     0.25,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, the context ends,
// or the attempts are used up. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := Value(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value is Do for functions that return a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalize()

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.Attempts || ctx.Err() != nil || !p.Retryable(err) {
			return zero, err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
}

func (p Policy) normalize() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 250 * time.Millisecond
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = p.Backoff
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// delay returns the sleep before retry number attempt (1-based).
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.Backoff) * math.Pow(2, float64(attempt-1))
	d = math.Min(d, float64(p.MaxBackoff))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

// LogRetries returns an OnRetry callback that logs each retry of op.
func LogRetries(log *zap.Logger, op string) func(int, error) {
	return func(attempt int, err error) {
		log.Warn("retrying request",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
