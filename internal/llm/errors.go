package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is output that is not JSON or does not match the
// requested schema.
type ErrInvalidResponse struct {
	Schema  string // schema name, empty for unstructured requests
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("invalid response: %v", e.Err)
	}
	return fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is a 5xx, a network failure or an unclassified
// SDK error.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a response cut off at the token limit. Long
// action plans are the usual cause; raise the planner's token budget.
type ErrMaxTokensExceeded struct {
	Limit   int
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("response truncated at %d tokens", e.Limit)
	}
	return "response truncated at the token limit"
}

// CallError is the final failure of a planner call after retries.
type CallError struct {
	Call     Call
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s failed after %d attempts: %v", e.Call, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Call, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Transient reports whether another attempt of the same request might
// succeed. Invalid responses count as transient; callers decide how often
// to re-ask.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var maxTok *ErrMaxTokensExceeded
	return !errors.As(err, &maxTok)
}
