package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/goals"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/layout"
)

// Screen defines the interface for all board screens.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Tracker is the slice of the goal service the screens drive. Reads are
// served from the live overlay, so every render reflects remote pushes.
type Tracker interface {
	Goals() []model.Goal
	Goal(goalID string) (model.Goal, bool)
	Preferences() model.Preferences
	Summary() tracking.Summary
	Today() calendar.Date

	ToggleStep(ctx context.Context, goalID, stepID string) (goals.ToggleResult, bool, error)
	AddStep(ctx context.Context, goalID string, step model.Step) (model.Goal, bool, error)
}

var _ Tracker = (*goals.Service)(nil)

// RefreshMsg is delivered periodically so screens re-read the tracker.
type RefreshMsg struct{}
