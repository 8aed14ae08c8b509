package model

import (
	"math"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier for goals, steps and sub-steps.
func NewID() string {
	return uuid.NewString()
}

// NormalizeStep defaults every field of a step read from an untrusted
// source. Unknown enums fall back to safe values, nil slices become empty
// and missing ids are generated. It never rejects a record.
func NormalizeStep(s Step) Step {
	if s.ID == "" {
		s.ID = NewID()
	}
	if !s.Difficulty.Valid() {
		s.Difficulty = DifficultyEasy
	}
	if !s.Frequency.Valid() {
		s.Frequency = FrequencyOnce
	}
	if s.CheckIns == nil {
		s.CheckIns = []string{}
	}
	if s.SubSteps == nil {
		s.SubSteps = []SubStep{}
	}
	for i := range s.SubSteps {
		if s.SubSteps[i].ID == "" {
			s.SubSteps[i].ID = NewID()
		}
	}
	return s
}

// NormalizeGoal defaults a goal and all of its steps. The derived Progress
// and Status fields are only sanitized here; callers recompute them against
// the current day.
func NormalizeGoal(g Goal) Goal {
	if g.ID == "" {
		g.ID = NewID()
	}
	if g.Steps == nil {
		g.Steps = []Step{}
	}
	for i := range g.Steps {
		g.Steps[i] = NormalizeStep(g.Steps[i])
	}
	if !g.Status.Valid() {
		g.Status = StatusNotStarted
	}
	if math.IsNaN(g.Progress) || g.Progress < 0 {
		g.Progress = 0
	}
	if g.Progress > 100 {
		g.Progress = 100
	}
	return g
}

// NormalizePreferences defaults an untrusted preferences record.
func NormalizePreferences(p Preferences) Preferences {
	if !p.AIPersona.Valid() {
		p.AIPersona = PersonaMotivational
	}
	if p.TotalXP < 0 {
		p.TotalXP = 0
	}
	return p
}
