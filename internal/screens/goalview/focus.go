package goalview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

const defaultFocus = 25 * time.Minute

var firstNumber = regexp.MustCompile(`\d+`)

// focusDuration reads a step's estimated time ("15 mins", "1 hour",
// "2hrs"). Only the first whole number counts, so "1.5 hours" is one
// hour. Estimates without a number get the default 25 minutes.
func focusDuration(estimate string) time.Duration {
	s := strings.ToLower(estimate)
	n, err := strconv.Atoi(firstNumber.FindString(s))
	if err != nil || n <= 0 {
		return defaultFocus
	}
	if strings.Contains(s, "hour") || strings.Contains(s, "hr") {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Minute
}

// focusTickMsg carries the generation of the countdown that scheduled it.
// Ticks from an earlier run of the timer are dropped.
type focusTickMsg struct{ gen int }

// focusTimer is a countdown on one step.
type focusTimer struct {
	stepID      string
	title       string
	description string
	total       time.Duration
	left        time.Duration
	running     bool
	gen         int
}

func newFocusTimer(step model.Step) *focusTimer {
	d := focusDuration(step.EstimatedTime)
	return &focusTimer{
		stepID:      step.ID,
		title:       step.Title,
		description: step.Description,
		total:       d,
		left:        d,
	}
}

func (f *focusTimer) tick() tea.Cmd {
	gen := f.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return focusTickMsg{gen: gen} })
}

// toggle starts or pauses the countdown.
func (f *focusTimer) toggle() tea.Cmd {
	if f.left <= 0 {
		return nil
	}
	f.running = !f.running
	f.gen++
	if f.running {
		return f.tick()
	}
	return nil
}

func (f *focusTimer) reset() {
	f.running = false
	f.gen++
	f.left = f.total
}

func (f *focusTimer) onTick(msg focusTickMsg) tea.Cmd {
	if msg.gen != f.gen || !f.running {
		return nil
	}
	f.left -= time.Second
	if f.left <= 0 {
		f.left = 0
		f.running = false
		return nil
	}
	return f.tick()
}

func (f *focusTimer) done() bool {
	return f.left <= 0
}

func (f *focusTimer) view(width int) string {
	var b strings.Builder
	b.WriteString("\n  " + theme.Subtitle.Render("DEEP FOCUS") + "\n\n")
	b.WriteString("  " + theme.Title.Render(f.title) + "\n")
	if f.description != "" {
		b.WriteString("  " + theme.Body.Render(f.description) + "\n")
	}
	b.WriteString("\n  " + theme.XP.Render(clock(f.left)) + "  ")
	switch {
	case f.done():
		b.WriteString(theme.Done.Render("Time's up. Press c to check in."))
	case f.running:
		b.WriteString(theme.Hint.Render("Focusing"))
	default:
		b.WriteString(theme.Hint.Render("Paused"))
	}
	b.WriteString("\n\n")

	elapsed := float64(f.total-f.left) / float64(f.total) * 100
	b.WriteString("  " + components.NewProgressBar("", elapsed, false, min(width-4, 60)).View() + "\n")
	return b.String()
}

// clock renders d as mm:ss, with minutes past 59 kept as minutes.
func clock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
