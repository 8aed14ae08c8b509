package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPEvents_AppendQuerySummary(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []XPEventData{
		{UserID: "u1", GoalID: "g", StepID: "s1", StepTitle: "Run", Difficulty: "Hard", Delta: 50, Total: 50},
		{UserID: "u1", GoalID: "g", StepID: "s2", StepTitle: "Read", Difficulty: "Easy", Delta: 10, Total: 60},
		{UserID: "u1", GoalID: "g", StepID: "s1", StepTitle: "Run", Difficulty: "Hard", Delta: -50, Total: 10},
		{UserID: "u2", GoalID: "h", StepID: "t", Delta: 30, Total: 30},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendXPEvent(ctx, e))
	}

	got, err := repo.QueryXPEvents(ctx, "u1", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, -50, got[0].Delta, "newest first")
	assert.Equal(t, 10, got[0].Total)
	assert.Greater(t, got[0].Sequence, got[1].Sequence)

	limited, err := repo.QueryXPEvents(ctx, "u1", QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	older, err := repo.QueryXPEvents(ctx, "u1", QueryOpts{Before: got[0].Sequence})
	require.NoError(t, err)
	assert.Len(t, older, 2)

	sum, err := repo.XPSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 60, sum.Earned)
	assert.Equal(t, 50, sum.Revoked)
	assert.Equal(t, 3, sum.Events)
	assert.False(t, sum.LastSeen.IsZero())

	empty, err := repo.XPSummary(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, XPSummary{}, empty)
}

func TestLLMEvents_AppendGetUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "action-plan",
		InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true,
		RequestBody: "[user]\nplan", ResponseBody: `{"steps":[]}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "weekly-review",
		InputTokens: 50, OutputTokens: 100, LatencyMs: 300, Success: false, ErrorMessage: "rate limited",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "action-plan",
		InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true,
	}))

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "gpt-4o-mini", list[0].Model)

	e, err := repo.GetLLMEvent(ctx, list[2].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.Success)
	assert.Equal(t, `{"steps":[]}`, e.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "action-plan", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 110, byPurpose[0].InputTokens)
	assert.Equal(t, int64(500), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "claude-sonnet-4-5", byModel[0].Model)
	assert.Equal(t, 500, byModel[0].OutputTokens)
}
