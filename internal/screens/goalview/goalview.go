// Package goalview is the check-in screen of one goal.
package goalview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/goalpath/internal/goals"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/router"
	"github.com/abhisek/goalpath/internal/screen"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/layout"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

type toggledMsg struct {
	gained int
	err    error
}

type addedMsg struct {
	title string
	err   error
}

// GoalScreen lists the steps of one goal and toggles today's check-ins.
type GoalScreen struct {
	tracker screen.Tracker
	goalID  string
	cursor  int
	adding  bool
	input   components.TextInput
	focus   *focusTimer
	flash   string
	errMsg  string
}

var _ screen.Screen = (*GoalScreen)(nil)
var _ screen.KeyHintProvider = (*GoalScreen)(nil)

// New creates the screen for goalID.
func New(tracker screen.Tracker, goalID string) *GoalScreen {
	return &GoalScreen{tracker: tracker, goalID: goalID}
}

func (s *GoalScreen) Init() tea.Cmd {
	return nil
}

func (s *GoalScreen) Title() string {
	if g, ok := s.tracker.Goal(s.goalID); ok {
		return g.Title
	}
	return "Goal"
}

func (s *GoalScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case toggledMsg:
		s.flash, s.errMsg = "", ""
		switch {
		case msg.gained > 0:
			s.flash = fmt.Sprintf("+%d XP", msg.gained)
		case msg.gained < 0:
			s.flash = fmt.Sprintf("%d XP", msg.gained)
		}
		if msg.err != nil {
			s.errMsg = describeErr(msg.err)
		}
		return s, nil

	case addedMsg:
		s.flash, s.errMsg = "Added "+msg.title, ""
		if msg.err != nil {
			s.errMsg = describeErr(msg.err)
		}
		return s, nil

	case focusTickMsg:
		if s.focus == nil {
			return s, nil
		}
		return s, s.focus.onTick(msg)

	case tea.KeyPressMsg:
		if s.focus != nil {
			return s.updateFocus(msg)
		}
		if s.adding {
			return s.updateInput(msg)
		}
		return s.updateKeys(msg)
	}

	if s.adding {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *GoalScreen) updateKeys(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "q" {
		return s, router.Back()
	}
	g, ok := s.tracker.Goal(s.goalID)
	if !ok {
		return s, nil
	}

	switch key {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, max(len(g.Steps)-1, 0))
	case "space", " ", "enter", "x":
		if s.cursor >= len(g.Steps) {
			return s, nil
		}
		return s, s.toggle(g.Steps[s.cursor].ID)
	case "f":
		if s.cursor >= len(g.Steps) {
			return s, nil
		}
		s.flash, s.errMsg = "", ""
		s.focus = newFocusTimer(g.Steps[s.cursor])
	case "a":
		s.adding = true
		s.flash, s.errMsg = "", ""
		s.input = components.NewTextInput("New daily step", "e.g. Stretch for 10 minutes", 120)
		return s, s.input.Init()
	}
	return s, nil
}

func (s *GoalScreen) updateFocus(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "space", " ", "p":
		return s, s.focus.toggle()
	case "r":
		s.focus.reset()
	case "c", "enter":
		stepID := s.focus.stepID
		s.focus = nil
		g, ok := s.tracker.Goal(s.goalID)
		if !ok {
			return s, nil
		}
		for _, step := range g.Steps {
			if step.ID != stepID {
				continue
			}
			if tracking.CheckedInOn(step, s.tracker.Today()) {
				s.flash = "Already checked in today"
				return s, nil
			}
			return s, s.toggle(stepID)
		}
	case "esc", "q":
		s.focus = nil
	}
	return s, nil
}

func (s *GoalScreen) updateInput(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.adding = false
		return s, nil
	case "enter":
		s.adding = false
		title := strings.TrimSpace(s.input.Value())
		if title == "" {
			return s, nil
		}
		return s, s.add(title)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *GoalScreen) toggle(stepID string) tea.Cmd {
	tracker, goalID := s.tracker, s.goalID
	return func() tea.Msg {
		before := tracker.Preferences().TotalXP
		res, ok, err := tracker.ToggleStep(context.Background(), goalID, stepID)
		if !ok {
			return toggledMsg{err: err}
		}
		return toggledMsg{gained: res.Preferences.TotalXP - before, err: err}
	}
}

func (s *GoalScreen) add(title string) tea.Cmd {
	tracker, goalID := s.tracker, s.goalID
	return func() tea.Msg {
		step := model.Step{
			ID:         model.NewID(),
			Title:      title,
			Difficulty: model.DifficultyMedium,
			Frequency:  model.FrequencyDaily,
		}
		_, _, err := tracker.AddStep(context.Background(), goalID, step)
		return addedMsg{title: title, err: err}
	}
}

func describeErr(err error) string {
	var pe *goals.PersistError
	if errors.As(err, &pe) {
		return "Not saved: " + pe.Err.Error()
	}
	return err.Error()
}

func (s *GoalScreen) View(width, height int) string {
	g, ok := s.tracker.Goal(s.goalID)
	if !ok {
		return "\n  " + theme.Hint.Render("This goal no longer exists. Press Esc to go back.")
	}
	if s.focus != nil {
		return s.focus.view(width)
	}
	today := s.tracker.Today()

	var b strings.Builder
	b.WriteString("\n")
	if g.Motivation != "" {
		b.WriteString("  " + theme.Subtitle.Render("Why: "+g.Motivation) + "\n")
	}
	b.WriteString("  " + components.NewProgressBar("Progress", g.Progress, true, min(width-4, 60)).View() + "\n\n")

	if len(g.Steps) == 0 {
		b.WriteString("  " + theme.Hint.Render("No steps yet. Press a to add one.") + "\n")
	}
	for i, step := range g.Steps {
		marker := "  "
		if i == s.cursor {
			marker = theme.Title.Render("▸ ")
		}
		b.WriteString(marker + components.StepLine(i+1, step, today) + "\n")
		if i == s.cursor {
			for _, ss := range step.SubSteps {
				b.WriteString(components.SubStepLine(ss) + "\n")
			}
		}
	}

	b.WriteString("\n")
	if s.adding {
		b.WriteString(s.input.View() + "\n")
	}
	if s.flash != "" {
		b.WriteString("  " + theme.XP.Render(s.flash) + "\n")
	}
	if s.errMsg != "" {
		b.WriteString("  " + theme.ErrorText.Render(s.errMsg) + "\n")
	}
	return b.String()
}

func (s *GoalScreen) KeyHints() []layout.KeyHint {
	if s.focus != nil {
		toggle := "Start"
		if s.focus.running {
			toggle = "Pause"
		}
		return []layout.KeyHint{
			{Key: "Space", Description: toggle},
			{Key: "r", Description: "Reset"},
			{Key: "c", Description: "Check in"},
			{Key: "Esc", Description: "Close"},
		}
	}
	if s.adding {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Add"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space", Description: "Check in"},
		{Key: "f", Description: "Focus"},
		{Key: "a", Description: "Add step"},
		{Key: "Esc", Description: "Back"},
	}
}
