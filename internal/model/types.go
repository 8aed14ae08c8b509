package model

import "time"

// Difficulty grades how demanding a step is. It drives the XP reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// AllDifficulties returns all difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Frequency is the recurrence policy of a step.
type Frequency string

const (
	FrequencyOnce    Frequency = "Once"
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// AllFrequencies returns all frequencies in display order.
func AllFrequencies() []Frequency {
	return []Frequency{FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Recurring reports whether steps with this frequency are tracked by check-ins.
func (f Frequency) Recurring() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// PeriodName returns the singular name of one period, e.g. "Day".
func (f Frequency) PeriodName() string {
	switch f {
	case FrequencyDaily:
		return "Day"
	case FrequencyWeekly:
		return "Week"
	case FrequencyMonthly:
		return "Month"
	default:
		return ""
	}
}

// Status is the derived completion state of a goal.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Persona selects the coaching voice of the AI planner.
type Persona string

const (
	PersonaMotivational  Persona = "Motivational"
	PersonaDrillSergeant Persona = "Drill Sergeant"
	PersonaAnalytical    Persona = "Analytical"
)

// AllPersonas returns all personas in display order.
func AllPersonas() []Persona {
	return []Persona{PersonaMotivational, PersonaDrillSergeant, PersonaAnalytical}
}

// Valid reports whether p is a known persona.
func (p Persona) Valid() bool {
	switch p {
	case PersonaMotivational, PersonaDrillSergeant, PersonaAnalytical:
		return true
	}
	return false
}

// SubStep is a flat decomposition item of a step. It has no recurrence and
// does not feed into progress or XP.
type SubStep struct {
	ID          string `json:"id" firestore:"id"`
	Title       string `json:"title" firestore:"title"`
	IsCompleted bool   `json:"isCompleted" firestore:"isCompleted"`
}

// Step is one unit of work within a goal.
//
// IsCompleted is authoritative for FrequencyOnce; CheckIns is authoritative
// for recurring frequencies. CheckIns holds raw local dates (YYYY-MM-DD) in
// toggle order, which is not necessarily calendar order.
type Step struct {
	ID            string     `json:"id" firestore:"id"`
	Title         string     `json:"title" firestore:"title"`
	Description   string     `json:"description" firestore:"description"`
	EstimatedTime string     `json:"estimatedTime" firestore:"estimatedTime"`
	Difficulty    Difficulty `json:"difficulty" firestore:"difficulty"`
	Frequency     Frequency  `json:"frequency" firestore:"frequency"`
	IsCompleted   bool       `json:"isCompleted" firestore:"isCompleted"`
	CheckIns      []string   `json:"checkIns" firestore:"checkIns"`
	Deadline      string     `json:"deadline,omitempty" firestore:"deadline,omitempty"`
	SubSteps      []SubStep  `json:"subSteps" firestore:"subSteps"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	if s.CheckIns != nil {
		out.CheckIns = append(make([]string, 0, len(s.CheckIns)), s.CheckIns...)
	}
	if s.SubSteps != nil {
		out.SubSteps = append(make([]SubStep, 0, len(s.SubSteps)), s.SubSteps...)
	}
	return out
}

// Goal is a named ambition with an ordered list of steps.
//
// Progress and Status are caches derived from Steps. They are overwritten
// after every steps mutation and must never be patched incrementally.
type Goal struct {
	ID         string    `json:"id" firestore:"id"`
	Title      string    `json:"title" firestore:"title"`
	Motivation string    `json:"motivation" firestore:"motivation"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	Deadline   string    `json:"deadline,omitempty" firestore:"deadline,omitempty"`
	Status     Status    `json:"status" firestore:"status"`
	Progress   float64   `json:"progress" firestore:"progress"`
	Steps      []Step    `json:"steps" firestore:"steps"`
	Archived   bool      `json:"archived" firestore:"archived"`
}

// Clone returns a deep copy of the goal.
func (g Goal) Clone() Goal {
	out := g
	if g.Steps != nil {
		out.Steps = make([]Step, len(g.Steps))
		for i, s := range g.Steps {
			out.Steps[i] = s.Clone()
		}
	}
	return out
}

// StepIndex returns the position of the step with the given id, or -1.
func (g Goal) StepIndex(stepID string) int {
	for i, s := range g.Steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

// Preferences is the per-user settings record.
type Preferences struct {
	DisplayName string  `json:"displayName" firestore:"displayName"`
	DarkMode    bool    `json:"darkMode" firestore:"darkMode"`
	AIPersona   Persona `json:"aiPersona" firestore:"aiPersona"`
	TotalXP     int     `json:"totalXp" firestore:"totalXp"`
}

// DefaultPreferences returns the preferences created for a new user.
func DefaultPreferences() Preferences {
	return Preferences{AIPersona: PersonaMotivational}
}

// PreferencesPatch is a partial preferences update. Nil fields are left
// unchanged by SetPreferences.
type PreferencesPatch struct {
	DisplayName *string
	DarkMode    *bool
	AIPersona   *Persona
	TotalXP     *int
}

// Apply merges the patch into p and returns the result.
func (pp PreferencesPatch) Apply(p Preferences) Preferences {
	if pp.DisplayName != nil {
		p.DisplayName = *pp.DisplayName
	}
	if pp.DarkMode != nil {
		p.DarkMode = *pp.DarkMode
	}
	if pp.AIPersona != nil {
		p.AIPersona = *pp.AIPersona
	}
	if pp.TotalXP != nil {
		p.TotalXP = *pp.TotalXP
	}
	return p
}

// Empty reports whether the patch changes nothing.
func (pp PreferencesPatch) Empty() bool {
	return pp.DisplayName == nil && pp.DarkMode == nil && pp.AIPersona == nil && pp.TotalXP == nil
}

// StepChanges lists the fields a review may change on an existing step.
// Identity and completion state are not representable here.
type StepChanges struct {
	Deadline    *string     `json:"deadline,omitempty"`
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
}

// StepUpdate targets one existing step with a set of changes.
type StepUpdate struct {
	StepID  string      `json:"stepId"`
	Changes StepChanges `json:"changes"`
}

// ReviewResponse is a weekly review suggestion from the planner.
type ReviewResponse struct {
	Analysis      string       `json:"analysis"`
	Modifications []StepUpdate `json:"modifications"`
	NewSteps      []Step       `json:"newSteps"`
}
