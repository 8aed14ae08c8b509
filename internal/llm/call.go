package llm

import "context"

type callKey struct{}

// Call labels one planner request. It travels on the context so decorators
// can tag events and errors without widening Request.
type Call struct {
	Purpose string
	// GoalID is empty for calls made before a goal exists, such as
	// clarifying questions and the first action plan.
	GoalID string
}

// WithCall attaches c to ctx.
func WithCall(ctx context.Context, c Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the call attached to ctx. Purpose is "unknown" when
// nothing was attached.
func CallFrom(ctx context.Context) Call {
	c, _ := ctx.Value(callKey{}).(Call)
	if c.Purpose == "" {
		c.Purpose = "unknown"
	}
	return c
}

func (c Call) String() string {
	if c.GoalID == "" {
		return c.Purpose
	}
	return c.Purpose + " (goal " + shortID(c.GoalID) + ")"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
