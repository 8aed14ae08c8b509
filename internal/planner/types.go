package planner

import (
	"errors"
	"fmt"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/llm"
	"github.com/abhisek/goalpath/internal/model"
)

// Purpose labels attached to LLM requests for event logging.
const (
	PurposeClarify   = "clarify"
	PurposePlan      = "action-plan"
	PurposeMoreSteps = "more-steps"
	PurposeSubSteps  = "sub-steps"
	PurposeReview    = "weekly-review"
)

// QA is one answered clarifying question.
type QA struct {
	Question string
	Answer   string
}

// PlanInput is everything needed to draft an action plan for a new goal.
type PlanInput struct {
	GoalTitle  string
	Motivation string
	Deadline   string // YYYY-MM-DD or empty
	Answers    []QA
	// ExistingSteps are steps the plan must not duplicate, e.g. when a
	// goal is re-planned.
	ExistingSteps []model.Step
	Today         calendar.Date
	Persona       model.Persona
}

// ReviewInput is the context of a weekly review.
type ReviewInput struct {
	Goal       model.Goal
	Reflection string
	Mood       int // 1-5, clamped
	Today      calendar.Date
	Persona    model.Persona
}

// ServiceError reports a failed planner call. The operation produced no
// output; nothing partial is returned alongside it.
type ServiceError struct {
	Op  string // purpose label of the failed call
	Err error
}

func (e *ServiceError) Error() string {
	// A *llm.CallError already names the purpose.
	var ce *llm.CallError
	if errors.As(e.Err, &ce) {
		return "planner: " + e.Err.Error()
	}
	return fmt.Sprintf("planner %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// FallbackQuestions are asked when clarifying questions cannot be generated.
var FallbackQuestions = []string{
	"What is your biggest obstacle right now?",
	"How much time can you dedicate to this per week?",
	"What specifically does 'success' look like for you?",
}
