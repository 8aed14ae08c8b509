package components

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

var today = calendar.NewDate(2024, time.January, 10)

func TestProgressBar_Width(t *testing.T) {
	for _, pct := range []float64{0, 25, 100, 150} {
		view := NewProgressBar("Run", pct, true, 40).View()
		assert.Equal(t, 40, lipgloss.Width(view), "percent %v", pct)
	}
}

func TestProgressBar_Fill(t *testing.T) {
	view := NewProgressBar("", 50, false, 10).View()
	assert.Equal(t, 5, strings.Count(view, "█"))
	assert.Equal(t, 5, strings.Count(view, "░"))
}

func TestStepLine(t *testing.T) {
	s := model.Step{
		Title:      "Run",
		Frequency:  model.FrequencyDaily,
		Difficulty: model.DifficultyHard,
		CheckIns:   []string{"2024-01-08", "2024-01-09", "2024-01-10"},
	}
	line := StepLine(1, s, today)
	assert.Contains(t, line, "[x]")
	assert.Contains(t, line, "Run")
	assert.Contains(t, line, "3 day streak")

	overdue := model.Step{Title: "Buy shoes", Frequency: model.FrequencyOnce, Deadline: "2024-01-05"}
	assert.Contains(t, StepLine(2, overdue, today), "overdue 2024-01-05")

	overdue.IsCompleted = true
	assert.Contains(t, StepLine(2, overdue, today), "due 2024-01-05")
	assert.NotContains(t, StepLine(2, overdue, today), "overdue")
}

func TestSubStepLine(t *testing.T) {
	line := SubStepLine(model.SubStep{Title: "Lace up", IsCompleted: true})
	assert.Contains(t, line, "[x]")
	assert.Contains(t, line, "Lace up")
}

type pickedMsg string

func TestMenu_SkipsDisabledAndRunsAction(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "header", Disabled: true},
		{Label: "first", Action: func() tea.Cmd { return func() tea.Msg { return pickedMsg("first") } }},
		{Label: "gone", Disabled: true},
		{Label: "second", Action: func() tea.Cmd { return func() tea.Msg { return pickedMsg("second") } }},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected, "cursor stops at the last item")

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, pickedMsg("second"), cmd())

	m.SetItems(m.Items[:2])
	assert.Equal(t, 1, m.Selected)
	assert.Contains(t, m.View(), "▸")
}
