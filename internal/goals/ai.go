package goals

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/planner"
)

// NewGoalRequest describes a goal to be planned.
type NewGoalRequest struct {
	Title      string
	Motivation string
	Deadline   string
	Answers    []planner.QA
}

// ClarifyingQuestions returns the questions to ask before planning a goal.
// Without a planner the fallback questions are returned.
func (s *Service) ClarifyingQuestions(ctx context.Context, title, motivation string) []string {
	if s.planner == nil {
		return append([]string(nil), planner.FallbackQuestions...)
	}
	return s.planner.ClarifyingQuestions(ctx, title, motivation, s.Preferences().AIPersona)
}

// CreateGoal plans a new goal and stores it. Nothing is stored when
// planning fails.
func (s *Service) CreateGoal(ctx context.Context, req NewGoalRequest) (model.Goal, error) {
	if s.planner == nil {
		return model.Goal{}, &ExternalServiceError{Op: "create goal", Err: ErrNoPlanner}
	}
	today := s.Today()

	steps, err := s.planner.ActionPlan(ctx, planner.PlanInput{
		GoalTitle:  req.Title,
		Motivation: req.Motivation,
		Deadline:   req.Deadline,
		Answers:    req.Answers,
		Today:      today,
		Persona:    s.Preferences().AIPersona,
	})
	if err != nil {
		s.log.Warn("action plan failed", zap.String("title", req.Title), zap.Error(err))
		return model.Goal{}, &ExternalServiceError{Op: "create goal", Err: err}
	}

	g := NewGoal(req.Title, req.Motivation, req.Deadline, steps, s.now(), today)

	s.mu.Lock()
	s.goals = append([]model.Goal{g}, s.goals...)
	s.mu.Unlock()

	s.log.Info("goal created", zap.String("goal_id", g.ID), zap.Int("steps", len(g.Steps)))
	if err := s.store.PutGoal(ctx, s.userID, g); err != nil {
		return g.Clone(), &PersistError{Op: "create goal", GoalID: g.ID, Err: err}
	}
	return g.Clone(), nil
}

// GenerateMoreSteps asks the planner to extend a goal's plan.
func (s *Service) GenerateMoreSteps(ctx context.Context, goalID string) (model.Goal, bool, error) {
	if s.planner == nil {
		return model.Goal{}, false, &ExternalServiceError{Op: "generate more steps", Err: ErrNoPlanner}
	}
	g, ok := s.Goal(goalID)
	if !ok {
		s.log.Debug("goal not found", zap.String("op", "generate more steps"), zap.String("goal_id", goalID))
		return model.Goal{}, false, nil
	}

	steps, err := s.planner.MoreSteps(ctx, g, s.Today(), s.Preferences().AIPersona)
	if err != nil {
		return g, false, &ExternalServiceError{Op: "generate more steps", Err: err}
	}
	return s.mutate(ctx, "generate more steps", goalID, func(g model.Goal, today calendar.Date) (model.Goal, bool) {
		return AppendSteps(g, steps, today)
	})
}

// BreakDownStep replaces a step's sub-steps with planner-generated ones.
func (s *Service) BreakDownStep(ctx context.Context, goalID, stepID string) (model.Goal, bool, error) {
	if s.planner == nil {
		return model.Goal{}, false, &ExternalServiceError{Op: "break down step", Err: ErrNoPlanner}
	}
	g, ok := s.Goal(goalID)
	if !ok {
		s.log.Debug("goal not found", zap.String("op", "break down step"), zap.String("goal_id", goalID))
		return model.Goal{}, false, nil
	}
	i := g.StepIndex(stepID)
	if i < 0 {
		s.log.Debug("step not found", zap.String("goal_id", goalID), zap.String("step_id", stepID))
		return g, false, nil
	}

	subs, err := s.planner.SubSteps(ctx, g, g.Steps[i], s.Preferences().AIPersona)
	if err != nil {
		return g, false, &ExternalServiceError{Op: "break down step", Err: err}
	}
	return s.mutate(ctx, "break down step", goalID, func(g model.Goal, _ calendar.Date) (model.Goal, bool) {
		return BreakDown(g, stepID, subs)
	})
}

// WeeklyReview asks the planner for a review of a goal. The suggestion is
// returned for the caller to accept via ApplyReview; nothing is changed
// here. A missing goal yields nil.
func (s *Service) WeeklyReview(ctx context.Context, goalID, reflection string, mood int) (*model.ReviewResponse, error) {
	if s.planner == nil {
		return nil, &ExternalServiceError{Op: "weekly review", Err: ErrNoPlanner}
	}
	g, ok := s.Goal(goalID)
	if !ok {
		s.log.Debug("goal not found", zap.String("op", "weekly review"), zap.String("goal_id", goalID))
		return nil, nil
	}

	review, err := s.planner.WeeklyReview(ctx, g, reflection, mood, s.Today(), s.Preferences().AIPersona)
	if err != nil {
		return nil, &ExternalServiceError{Op: "weekly review", Err: err}
	}
	return review, nil
}
