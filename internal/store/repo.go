package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// LLM events only.
	Purpose string // exact match
	GoalID  string // id prefix
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	GoalID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls grouped by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// XPEventData records one XP change caused by a check-in toggle.
type XPEventData struct {
	UserID     string
	GoalID     string
	StepID     string
	StepTitle  string
	Difficulty string
	Delta      int
	Total      int // running total after the change
	Reason     string
}

// XPEventRecord is a stored XP event.
type XPEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	XPEventData
}

// XPSummary totals a user's XP history.
type XPSummary struct {
	Earned   int // sum of positive deltas
	Revoked  int // sum of negative deltas, as a positive number
	Events   int
	LastSeen time.Time
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates LLM calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates LLM calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendXPEvent records an XP change.
	AppendXPEvent(ctx context.Context, data XPEventData) error

	// QueryXPEvents returns a user's XP events newest first.
	QueryXPEvents(ctx context.Context, userID string, opts QueryOpts) ([]XPEventRecord, error)

	// XPSummary totals a user's XP events.
	XPSummary(ctx context.Context, userID string) (XPSummary, error)
}
