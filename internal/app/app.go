// Package app hosts the interactive check-in board.
package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/goalpath/internal/router"
	"github.com/abhisek/goalpath/internal/screen"
	"github.com/abhisek/goalpath/internal/screens/board"
	"github.com/abhisek/goalpath/internal/ui/layout"
)

const refreshInterval = time.Second

// AppModel is the root Bubble Tea model.
type AppModel struct {
	tracker screen.Tracker
	router  *router.Router
	width   int
	height  int
}

func newAppModel(tracker screen.Tracker) AppModel {
	return AppModel{
		tracker: tracker,
		router:  router.New(board.New(tracker)),
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return screen.RefreshMsg{} })
}

func (m AppModel) Init() tea.Cmd {
	return refresh()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.RefreshMsg:
		return m, tea.Batch(m.router.Update(msg), refresh())
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.tracker.Preferences().TotalXP,
		m.tracker.Today().Time().Format("Mon Jan 2"), m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = append(p.KeyHints(), hints...)
	}
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, max(m.height-6, 0))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run shows the board until the user quits.
func Run(tracker screen.Tracker) error {
	_, err := tea.NewProgram(newAppModel(tracker)).Run()
	return err
}
