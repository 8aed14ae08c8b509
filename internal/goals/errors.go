package goals

import (
	"errors"
	"fmt"
)

// ErrNoPlanner is returned by AI-backed intents when the service was built
// without a planner.
var ErrNoPlanner = errors.New("no AI planner configured")

// PersistError reports a store write that failed after the optimistic
// update was published. The in-memory state is not rolled back; the next
// subscription push reconciles it.
type PersistError struct {
	Op     string
	GoalID string
	Err    error
}

func (e *PersistError) Error() string {
	if e.GoalID == "" {
		return fmt.Sprintf("%s: persist: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: persist: %v", e.Op, e.GoalID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ExternalServiceError reports a failed planner call. No state was
// committed.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
