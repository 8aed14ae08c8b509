// Package board is the entry screen of the interactive check-in view: one
// row per visible goal.
package board

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/router"
	"github.com/abhisek/goalpath/internal/screen"
	"github.com/abhisek/goalpath/internal/screens/goalview"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/layout"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

// BoardScreen lists goals with their progress and today's open steps.
type BoardScreen struct {
	tracker screen.Tracker
	menu    components.Menu
}

var _ screen.Screen = (*BoardScreen)(nil)
var _ screen.KeyHintProvider = (*BoardScreen)(nil)

// New creates the board.
func New(tracker screen.Tracker) *BoardScreen {
	b := &BoardScreen{tracker: tracker}
	b.menu = components.NewMenu(b.items())
	return b
}

func (b *BoardScreen) Init() tea.Cmd {
	return nil
}

func (b *BoardScreen) Title() string {
	return "Today"
}

func (b *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	b.menu.SetItems(b.items())
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "q" {
		return b, tea.Quit
	}
	var cmd tea.Cmd
	b.menu, cmd = b.menu.Update(msg)
	return b, cmd
}

func (b *BoardScreen) items() []components.MenuItem {
	today := b.tracker.Today()
	var items []components.MenuItem
	for _, g := range b.tracker.Goals() {
		if g.Archived {
			continue
		}
		id := g.ID
		items = append(items, components.MenuItem{
			Label: row(g, openSteps(g, today)),
			Action: func() tea.Cmd {
				return router.Push(goalview.New(b.tracker, id))
			},
		})
	}
	return items
}

// openSteps counts steps still to do today.
func openSteps(g model.Goal, today calendar.Date) int {
	n := 0
	for _, s := range g.Steps {
		if !tracking.IsSatisfied(s, today) {
			n++
		}
	}
	return n
}

func row(g model.Goal, open int) string {
	bar := components.NewProgressBar("", g.Progress, true, 20).View()
	todo := theme.Done.Render("done for today")
	if open > 0 {
		todo = theme.Pending.Render(fmt.Sprintf("%d open", open))
	}
	return fmt.Sprintf("%s  %s  %s", bar, theme.Body.Render(g.Title), todo)
}

func (b *BoardScreen) View(width, height int) string {
	sum := b.tracker.Summary()
	prefs := b.tracker.Preferences()

	var sb strings.Builder
	sb.WriteString("\n")
	greeting := "Your goals"
	if prefs.DisplayName != "" {
		greeting = "Hi " + prefs.DisplayName + ", here are your goals"
	}
	sb.WriteString("  " + theme.Title.Render(greeting) + "\n")
	sb.WriteString("  " + theme.Subtitle.Render(fmt.Sprintf("%d active · %d completed", sum.Active, sum.Completed)) + "\n\n")

	if len(b.menu.Items) == 0 {
		sb.WriteString("  " + theme.Hint.Render("No goals yet. Create one with: goalpath goal new \"<title>\"") + "\n")
		return sb.String()
	}
	sb.WriteString(b.menu.View())
	return sb.String()
}

func (b *BoardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "q", Description: "Quit"},
	}
}
