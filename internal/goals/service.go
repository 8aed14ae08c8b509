package goals

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/planner"
	"github.com/abhisek/goalpath/internal/rewards"
	"github.com/abhisek/goalpath/internal/store"
	"github.com/abhisek/goalpath/internal/tracking"
)

// Planner is the AI planning collaborator. *planner.Service satisfies it.
type Planner interface {
	ClarifyingQuestions(ctx context.Context, title, motivation string, persona model.Persona) []string
	ActionPlan(ctx context.Context, input planner.PlanInput) ([]model.Step, error)
	MoreSteps(ctx context.Context, goal model.Goal, today calendar.Date, persona model.Persona) ([]model.Step, error)
	SubSteps(ctx context.Context, goal model.Goal, step model.Step, persona model.Persona) ([]model.SubStep, error)
	WeeklyReview(ctx context.Context, goal model.Goal, reflection string, mood int, today calendar.Date, persona model.Persona) (*model.ReviewResponse, error)
}

var _ Planner = (*planner.Service)(nil)

// Service orchestrates one user's goals. It keeps an optimistic overlay of
// goals and preferences: every intent is applied to the overlay first and
// persisted afterwards. Subscription pushes from the store replace the goal
// list wholesale.
//
// The mutex guards the overlay only. Store and planner calls are made
// without holding it.
type Service struct {
	userID  string
	store   store.Store
	planner Planner
	ledger  *rewards.Ledger
	log     *zap.Logger
	now     func() time.Time
	loc     *time.Location

	mu          sync.Mutex
	goals       []model.Goal
	prefs       model.Preferences
	unsubscribe func()
}

// Option configures a Service.
type Option func(*Service)

// WithPlanner enables the AI-backed intents.
func WithPlanner(p Planner) Option {
	return func(s *Service) { s.planner = p }
}

// WithLedger records XP changes to an event log.
func WithLedger(l *rewards.Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides where a day starts.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates an orchestrator for userID backed by st.
func NewService(userID string, st store.Store, opts ...Option) *Service {
	s := &Service{
		userID: userID,
		store:  st,
		log:    zap.NewNop(),
		now:    time.Now,
		loc:    time.Local,
		prefs:  model.DefaultPreferences(),
		goals:  []model.Goal{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.ledger == nil {
		s.ledger = rewards.NewLedger(userID, nil, s.log)
	}
	return s
}

// Today returns the current local calendar day.
func (s *Service) Today() calendar.Date {
	return calendar.Today(s.now(), s.loc)
}

// Start loads preferences, creating defaults for a new user, and subscribes
// to the goal list. It returns once the first goal push has been merged, or
// with the error that kept the store from loading it.
func (s *Service) Start(ctx context.Context) error {
	prefs, err := s.store.GetPreferences(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if prefs == nil {
		def := model.DefaultPreferences()
		patch := model.PreferencesPatch{
			DisplayName: &def.DisplayName,
			DarkMode:    &def.DarkMode,
			AIPersona:   &def.AIPersona,
			TotalXP:     &def.TotalXP,
		}
		if err := s.store.SetPreferences(ctx, s.userID, patch); err != nil {
			return fmt.Errorf("create preferences: %w", err)
		}
		prefs = &def
		s.log.Info("created preferences", zap.String("user_id", s.userID))
	}

	s.mu.Lock()
	s.prefs = model.NormalizePreferences(*prefs)
	s.mu.Unlock()

	unsubscribe, err := s.store.SubscribeGoals(ctx, s.userID, s.merge)
	if err != nil {
		return fmt.Errorf("subscribe goals: %w", err)
	}
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Stop ends the goal subscription.
func (s *Service) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// mintTimeout bounds the write-back of ids generated during a merge.
const mintTimeout = 10 * time.Second

// merge replaces the overlay goal list with a store push. Goals whose steps
// or sub-steps arrived without ids are written back once, so the generated
// ids stay stable across later pushes.
func (s *Service) merge(pushed []model.Goal) {
	today := s.Today()
	goals := make([]model.Goal, len(pushed))
	var minted []model.Goal
	for i, g := range pushed {
		goals[i] = tracking.Recompute(model.NormalizeGoal(g.Clone()), today)
		if missingIDs(g) {
			minted = append(minted, goals[i].Clone())
		}
	}

	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()
	s.log.Debug("goals merged", zap.Int("count", len(goals)))

	if len(minted) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mintTimeout)
	defer cancel()
	for _, g := range minted {
		if err := s.store.PutGoal(ctx, s.userID, g); err != nil {
			s.log.Warn("persist generated ids failed", zap.String("goal_id", g.ID), zap.Error(err))
			continue
		}
		s.log.Info("persisted generated ids", zap.String("goal_id", g.ID))
	}
}

func missingIDs(g model.Goal) bool {
	for _, st := range g.Steps {
		if st.ID == "" {
			return true
		}
		for _, sub := range st.SubSteps {
			if sub.ID == "" {
				return true
			}
		}
	}
	return false
}

// Goals returns a copy of the overlay goal list, newest first. Progress and
// Status are recomputed for today.
func (s *Service) Goals() []model.Goal {
	today := s.Today()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Goal, len(s.goals))
	for i, g := range s.goals {
		out[i] = tracking.Recompute(g.Clone(), today)
	}
	return out
}

// Goal returns one goal by id.
func (s *Service) Goal(goalID string) (model.Goal, bool) {
	today := s.Today()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(goalID)
	if i < 0 {
		return model.Goal{}, false
	}
	return tracking.Recompute(s.goals[i].Clone(), today), true
}

// Preferences returns the overlay preferences.
func (s *Service) Preferences() model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Summary returns dashboard counts for today.
func (s *Service) Summary() tracking.Summary {
	return tracking.Summarize(s.Goals(), s.Today())
}

// Ledger returns the XP ledger.
func (s *Service) Ledger() *rewards.Ledger {
	return s.ledger
}

func (s *Service) indexOf(goalID string) int {
	for i, g := range s.goals {
		if g.ID == goalID {
			return i
		}
	}
	return -1
}

// mutate applies fn to one goal in the overlay and persists the result.
// A missing goal or an unchanged result is a no-op.
func (s *Service) mutate(ctx context.Context, op, goalID string, fn func(model.Goal, calendar.Date) (model.Goal, bool)) (model.Goal, bool, error) {
	today := s.Today()

	s.mu.Lock()
	i := s.indexOf(goalID)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("goal not found", zap.String("op", op), zap.String("goal_id", goalID))
		return model.Goal{}, false, nil
	}
	next, changed := fn(s.goals[i], today)
	if !changed {
		cur := s.goals[i].Clone()
		s.mu.Unlock()
		s.log.Debug("intent changed nothing", zap.String("op", op), zap.String("goal_id", goalID))
		return cur, false, nil
	}
	s.goals[i] = next
	s.mu.Unlock()

	if err := s.store.PutGoal(ctx, s.userID, next); err != nil {
		s.log.Warn("persist goal failed", zap.String("op", op), zap.String("goal_id", goalID), zap.Error(err))
		return next.Clone(), true, &PersistError{Op: op, GoalID: goalID, Err: err}
	}
	return next.Clone(), true, nil
}

// ToggleStep flips today's completion of a step and applies its XP change.
func (s *Service) ToggleStep(ctx context.Context, goalID, stepID string) (ToggleResult, bool, error) {
	today := s.Today()

	s.mu.Lock()
	i := s.indexOf(goalID)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("goal not found", zap.String("op", "toggle step"), zap.String("goal_id", goalID))
		return ToggleResult{}, false, nil
	}
	before := s.prefs.TotalXP
	res, ok := ToggleStep(s.goals[i], s.prefs, stepID, today)
	if !ok {
		s.mu.Unlock()
		s.log.Debug("step not found", zap.String("goal_id", goalID), zap.String("step_id", stepID))
		return res, false, nil
	}
	s.goals[i] = res.Goal
	s.prefs = res.Preferences
	s.mu.Unlock()

	applied := res.Preferences.TotalXP - before
	s.ledger.Record(ctx, goalID, res.Step, applied, res.Preferences.TotalXP)

	var errs []error
	if err := s.store.PutGoal(ctx, s.userID, res.Goal); err != nil {
		errs = append(errs, &PersistError{Op: "toggle step", GoalID: goalID, Err: err})
	}
	if applied != 0 {
		total := res.Preferences.TotalXP
		if err := s.store.SetPreferences(ctx, s.userID, model.PreferencesPatch{TotalXP: &total}); err != nil {
			errs = append(errs, &PersistError{Op: "award xp", Err: err})
		}
	}
	if len(errs) > 0 {
		s.log.Warn("persist toggle failed", zap.String("goal_id", goalID), zap.Errors("errors", errs))
	}
	return res, true, errors.Join(errs...)
}

// ToggleSubStep flips a sub-step.
func (s *Service) ToggleSubStep(ctx context.Context, goalID, stepID, subStepID string) (model.Goal, bool, error) {
	return s.mutate(ctx, "toggle sub-step", goalID, func(g model.Goal, _ calendar.Date) (model.Goal, bool) {
		return ToggleSubStep(g, stepID, subStepID)
	})
}

// AddStep appends a manually written step.
func (s *Service) AddStep(ctx context.Context, goalID string, step model.Step) (model.Goal, bool, error) {
	return s.mutate(ctx, "add step", goalID, func(g model.Goal, today calendar.Date) (model.Goal, bool) {
		return AddStep(g, step, today)
	})
}

// DeleteStep removes a step.
func (s *Service) DeleteStep(ctx context.Context, goalID, stepID string) (model.Goal, bool, error) {
	return s.mutate(ctx, "delete step", goalID, func(g model.Goal, today calendar.Date) (model.Goal, bool) {
		return DeleteStep(g, stepID, today)
	})
}

// MoveStep reorders a step.
func (s *Service) MoveStep(ctx context.Context, goalID, stepID string, to int) (model.Goal, bool, error) {
	return s.mutate(ctx, "move step", goalID, func(g model.Goal, _ calendar.Date) (model.Goal, bool) {
		return MoveStep(g, stepID, to)
	})
}

// SetStepDeadline changes or clears a step deadline.
func (s *Service) SetStepDeadline(ctx context.Context, goalID, stepID, deadline string) (model.Goal, bool, error) {
	return s.mutate(ctx, "set deadline", goalID, func(g model.Goal, _ calendar.Date) (model.Goal, bool) {
		return SetStepDeadline(g, stepID, deadline)
	})
}

// SetArchived hides or restores a goal.
func (s *Service) SetArchived(ctx context.Context, goalID string, archived bool) (model.Goal, bool, error) {
	return s.mutate(ctx, "archive", goalID, func(g model.Goal, _ calendar.Date) (model.Goal, bool) {
		return SetArchived(g, archived)
	})
}

// ApplyReview applies a weekly review suggestion.
func (s *Service) ApplyReview(ctx context.Context, goalID string, review model.ReviewResponse) (model.Goal, bool, error) {
	return s.mutate(ctx, "apply review", goalID, func(g model.Goal, today calendar.Date) (model.Goal, bool) {
		return ApplyReview(g, review.Modifications, review.NewSteps, today)
	})
}

// DeleteGoal removes a goal.
func (s *Service) DeleteGoal(ctx context.Context, goalID string) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(goalID)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("goal not found", zap.String("op", "delete goal"), zap.String("goal_id", goalID))
		return false, nil
	}
	s.goals = append(s.goals[:i:i], s.goals[i+1:]...)
	s.mu.Unlock()

	if err := s.store.DeleteGoal(ctx, s.userID, goalID); err != nil {
		return true, &PersistError{Op: "delete goal", GoalID: goalID, Err: err}
	}
	return true, nil
}

// UpdatePreferences merges patch into the preferences. TotalXP is owned by
// the reward ledger and is ignored here.
func (s *Service) UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) (model.Preferences, error) {
	patch.TotalXP = nil
	if patch.AIPersona != nil && !patch.AIPersona.Valid() {
		return s.Preferences(), fmt.Errorf("unknown persona %q", *patch.AIPersona)
	}

	s.mu.Lock()
	s.prefs = patch.Apply(s.prefs)
	prefs := s.prefs
	s.mu.Unlock()

	if patch.Empty() {
		return prefs, nil
	}
	if err := s.store.SetPreferences(ctx, s.userID, patch); err != nil {
		return prefs, &PersistError{Op: "update preferences", Err: err}
	}
	return prefs, nil
}
