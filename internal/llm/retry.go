package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with exponential backoff and
// jitter. It shares the caller's deadline with the attempts it makes: a
// wait is skipped, and the last error returned, when what would be left of
// the deadline afterwards is shorter than MinAttempt.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

// Generate returns the first successful response, or a *CallError holding
// the last failure.
func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	call := CallFrom(ctx)
	attempts := 0
	invalidRetried := false
	var lastErr error

	for attempt := range max(r.config.MaxAttempts, 1) {
		attempts++
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !r.shouldRetry(err, &invalidRetried) || attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		if !r.fits(ctx, wait) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &CallError{Call: call, Attempts: attempts, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}

	return nil, &CallError{Call: call, Attempts: attempts, Err: lastErr}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry allows a single re-ask for invalid output and any number of
// retries for other transient errors.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	if !Transient(err) {
		return false
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

// fits reports whether sleeping for wait still leaves MinAttempt before the
// context deadline.
func (r *RetryProvider) fits(ctx context.Context, wait time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) >= wait+r.config.MinAttempt
}

// backoff computes the wait before the next attempt. Retry-After hints are
// honoured up to MaxWait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(rl.RetryAfter, r.config.MaxWait)
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
