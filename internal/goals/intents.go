// Package goals applies user intents to goal snapshots.
//
// The functions in this file are pure: they take a goal snapshot and return
// a new one together with a changed flag. Unknown step or sub-step ids are
// not errors; the snapshot comes back unchanged with changed=false. Every
// intent that can affect satisfaction recomputes Progress and Status from
// scratch before returning.
package goals

import (
	"time"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/rewards"
	"github.com/abhisek/goalpath/internal/tracking"
)

// NewGoal builds a goal around freshly planned steps.
func NewGoal(title, motivation, deadline string, steps []model.Step, createdAt time.Time, today calendar.Date) model.Goal {
	g := model.NormalizeGoal(model.Goal{
		ID:         model.NewID(),
		Title:      title,
		Motivation: motivation,
		CreatedAt:  createdAt,
		Deadline:   deadline,
		Steps:      cloneSteps(steps),
	})
	return tracking.Recompute(g, today)
}

// ToggleResult is the outcome of a step toggle.
type ToggleResult struct {
	Goal        model.Goal
	Preferences model.Preferences
	Step        model.Step // the step after the toggle
	Delta       int        // XP change requested before clamping
}

// ToggleStep flips today's completion of a step, recomputes the goal and
// applies the XP change to prefs exactly once.
func ToggleStep(g model.Goal, prefs model.Preferences, stepID string, today calendar.Date) (ToggleResult, bool) {
	i := g.StepIndex(stepID)
	if i < 0 {
		return ToggleResult{Goal: g, Preferences: prefs}, false
	}

	delta := rewards.ToggleDelta(g.Steps[i], today)

	out := g.Clone()
	out.Steps[i] = tracking.Toggle(g.Steps[i], today)
	out = tracking.Recompute(out, today)

	prefs.TotalXP = rewards.Apply(prefs.TotalXP, delta)

	return ToggleResult{
		Goal:        out,
		Preferences: prefs,
		Step:        out.Steps[i],
		Delta:       delta,
	}, true
}

// ToggleSubStep flips a sub-step. Sub-steps do not count toward progress.
func ToggleSubStep(g model.Goal, stepID, subStepID string) (model.Goal, bool) {
	i := g.StepIndex(stepID)
	if i < 0 {
		return g, false
	}
	for j, ss := range g.Steps[i].SubSteps {
		if ss.ID != subStepID {
			continue
		}
		out := g.Clone()
		out.Steps[i].SubSteps[j].IsCompleted = !ss.IsCompleted
		return out, true
	}
	return g, false
}

// AddStep appends a step. Missing fields are defaulted.
func AddStep(g model.Goal, step model.Step, today calendar.Date) (model.Goal, bool) {
	return AppendSteps(g, []model.Step{step}, today)
}

// AppendSteps appends steps in order, e.g. a batch of generated ones.
func AppendSteps(g model.Goal, steps []model.Step, today calendar.Date) (model.Goal, bool) {
	if len(steps) == 0 {
		return g, false
	}
	out := g.Clone()
	for _, s := range steps {
		out.Steps = append(out.Steps, model.NormalizeStep(s.Clone()))
	}
	return tracking.Recompute(out, today), true
}

// DeleteStep removes a step.
func DeleteStep(g model.Goal, stepID string, today calendar.Date) (model.Goal, bool) {
	i := g.StepIndex(stepID)
	if i < 0 {
		return g, false
	}
	out := g.Clone()
	out.Steps = append(out.Steps[:i], out.Steps[i+1:]...)
	return tracking.Recompute(out, today), true
}

// MoveStep relocates a step to index to, clamped to the valid range. The
// step keeps every field. Satisfaction is order-independent, so the caches
// are left alone.
func MoveStep(g model.Goal, stepID string, to int) (model.Goal, bool) {
	from := g.StepIndex(stepID)
	if from < 0 {
		return g, false
	}
	to = max(0, min(to, len(g.Steps)-1))
	if to == from {
		return g, false
	}

	out := g.Clone()
	moved := out.Steps[from]
	rest := append(out.Steps[:from:from], out.Steps[from+1:]...)
	steps := make([]model.Step, 0, len(g.Steps))
	steps = append(steps, rest[:to]...)
	steps = append(steps, moved)
	steps = append(steps, rest[to:]...)
	out.Steps = steps
	return out, true
}

// ApplyReview merges review changes into matching steps and appends the
// new steps. Changes for unknown step ids are ignored. Identity and
// completion state are never touched.
func ApplyReview(g model.Goal, mods []model.StepUpdate, newSteps []model.Step, today calendar.Date) (model.Goal, bool) {
	out := g.Clone()
	changed := false
	for _, m := range mods {
		i := out.StepIndex(m.StepID)
		if i < 0 {
			continue
		}
		if applyChanges(&out.Steps[i], m.Changes) {
			changed = true
		}
	}
	for _, s := range newSteps {
		out.Steps = append(out.Steps, model.NormalizeStep(s.Clone()))
		changed = true
	}
	if !changed {
		return g, false
	}
	return tracking.Recompute(out, today), true
}

func applyChanges(s *model.Step, c model.StepChanges) bool {
	changed := false
	if c.Deadline != nil && *c.Deadline != s.Deadline {
		s.Deadline = *c.Deadline
		changed = true
	}
	if c.Title != nil && *c.Title != s.Title {
		s.Title = *c.Title
		changed = true
	}
	if c.Description != nil && *c.Description != s.Description {
		s.Description = *c.Description
		changed = true
	}
	if c.Difficulty != nil && *c.Difficulty != s.Difficulty {
		s.Difficulty = *c.Difficulty
		changed = true
	}
	return changed
}

// BreakDown replaces a step's sub-steps.
func BreakDown(g model.Goal, stepID string, subSteps []model.SubStep) (model.Goal, bool) {
	i := g.StepIndex(stepID)
	if i < 0 {
		return g, false
	}
	out := g.Clone()
	out.Steps[i].SubSteps = append(make([]model.SubStep, 0, len(subSteps)), subSteps...)
	for j := range out.Steps[i].SubSteps {
		if out.Steps[i].SubSteps[j].ID == "" {
			out.Steps[i].SubSteps[j].ID = model.NewID()
		}
	}
	return out, true
}

// SetStepDeadline sets or, with an empty deadline, clears a step deadline.
func SetStepDeadline(g model.Goal, stepID, deadline string) (model.Goal, bool) {
	i := g.StepIndex(stepID)
	if i < 0 || g.Steps[i].Deadline == deadline {
		return g, false
	}
	out := g.Clone()
	out.Steps[i].Deadline = deadline
	return out, true
}

// SetArchived hides or restores a goal.
func SetArchived(g model.Goal, archived bool) (model.Goal, bool) {
	if g.Archived == archived {
		return g, false
	}
	g.Archived = archived
	return g, true
}

func cloneSteps(steps []model.Step) []model.Step {
	out := make([]model.Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}
