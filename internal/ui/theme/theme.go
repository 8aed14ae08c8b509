package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/goalpath/internal/model"
)

// Color palette
var (
	Primary = lipgloss.Color("#6366F1") // Indigo
	Accent  = lipgloss.Color("#F59E0B") // Amber, streaks and XP
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC") // White
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Done = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Pending = lipgloss.NewStyle().
		Foreground(TextDim)

	Overdue = lipgloss.NewStyle().
		Foreground(Warning)

	Streak = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	XP = lipgloss.NewStyle().
		Foreground(Accent)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Success)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// StatusStyle returns the style for a goal status label.
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusCompleted:
		return Done
	case model.StatusInProgress:
		return lipgloss.NewStyle().Foreground(Primary)
	default:
		return Pending
	}
}

// DifficultyStyle returns the style for a difficulty label.
func DifficultyStyle(d model.Difficulty) lipgloss.Style {
	switch d {
	case model.DifficultyHard:
		return lipgloss.NewStyle().Foreground(Error)
	case model.DifficultyMedium:
		return lipgloss.NewStyle().Foreground(Warning)
	default:
		return lipgloss.NewStyle().Foreground(Success)
	}
}
