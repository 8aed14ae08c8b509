package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func outage() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(subStepsJSON)})
	resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), subStepsRequest())
	require.NoError(t, err)
	assert.JSONEq(t, subStepsJSON, string(resp.Content))
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_OutageThenSuccess(t *testing.T) {
	mock := NewMockProvider(outage(), MockResponse{Content: json.RawMessage(subStepsJSON)})
	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), subStepsRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_GivesUpWithCallError(t *testing.T) {
	mock := NewMockProvider(outage(), outage(), outage(), outage())
	ctx := WithCall(context.Background(), Call{Purpose: "more-steps", GoalID: "goal-7"})

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, subStepsRequest())
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Attempts)
	assert.Equal(t, Call{Purpose: "more-steps", GoalID: "goal-7"}, ce.Call)
	assert.EqualError(t, err, "more-steps (goal goal-7) failed after 3 attempts: provider unavailable: down")
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetry_TruncatedPlanNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{Limit: 1024}},
		MockResponse{Content: json.RawMessage(subStepsJSON)},
	)
	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), subStepsRequest())
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_InvalidResponseReaskedOnce(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{Schema: "sub-steps", Err: errors.New("missing subSteps")}}
	mock := NewMockProvider(invalid, invalid, MockResponse{Content: json.RawMessage(subStepsJSON)})

	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), subStepsRequest())
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_StopsWhenBudgetTooShort(t *testing.T) {
	cfg := fastRetry()
	cfg.MinAttempt = time.Minute
	mock := NewMockProvider(outage(), MockResponse{Content: json.RawMessage(subStepsJSON)})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := WithRetry(mock, cfg).Generate(ctx, subStepsRequest())
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Attempts)
	assert.Equal(t, 1, mock.CallCount(), "no second attempt without a minute left")
}

func TestRetry_NoDeadlineAlwaysFits(t *testing.T) {
	cfg := fastRetry()
	cfg.MinAttempt = time.Hour
	mock := NewMockProvider(outage(), MockResponse{Content: json.RawMessage(subStepsJSON)})

	_, err := WithRetry(mock, cfg).Generate(context.Background(), subStepsRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_CanceledDuringWait(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialWait = time.Second
	cfg.MaxWait = time.Second
	mock := NewMockProvider(outage(), MockResponse{Content: json.RawMessage(subStepsJSON)})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := WithRetry(mock, cfg).Generate(ctx, subStepsRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_Backoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{
		InitialWait: 2 * time.Second,
		MaxWait:     8 * time.Second,
		Multiplier:  2.0,
	}}

	for attempt, base := range []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second} {
		wait := r.backoff(attempt, &ErrProviderUnavailable{})
		assert.InDelta(t, float64(base), float64(wait), float64(base)*0.2+1, "attempt %d", attempt)
	}

	assert.Equal(t, 3*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}))
	assert.Equal(t, 8*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: time.Minute}), "Retry-After is capped")
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastRetry()).ModelID())
}
