// Package tui provides the terminal user interface for corral runs.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxVisibleEvents = 12

// AttemptMsg is sent when a new proposal attempt starts.
type AttemptMsg struct {
	Attempt     int
	MaxAttempts int
}

// PhaseMsg is sent when the run moves between phases.
type PhaseMsg struct {
	Phase string
}

// AgentEventMsg carries one line of agent activity.
type AgentEventMsg struct {
	Timestamp time.Time
	Kind      string
	Message   string
}

// PartitionMsg is sent when a partition record appears or disappears.
type PartitionMsg struct {
	File    string
	Removed bool
}

// RunDoneMsg signals that the run has finished.
type RunDoneMsg struct {
	Success bool
	Message string
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)
	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFC857"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#96E6A1")).
		Bold(true)
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// App is the bubbletea model for a partitioning run.
type App struct {
	spinner spinner.Model

	attempt     int
	maxAttempts int
	phase       string
	partitions  map[string]struct{}
	events      []AgentEventMsg

	width    int
	quitting bool
	done     bool
	success  bool
	message  string
}

// New creates a new App instance.
func New() *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	return &App{
		spinner:    sp,
		attempt:    1,
		phase:      "starting",
		partitions: make(map[string]struct{}),
		width:      80,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case AttemptMsg:
		a.attempt = msg.Attempt
		a.maxAttempts = msg.MaxAttempts

	case PhaseMsg:
		a.phase = msg.Phase

	case AgentEventMsg:
		a.events = append(a.events, msg)
		if len(a.events) > 200 {
			a.events = a.events[len(a.events)-200:]
		}

	case PartitionMsg:
		if msg.Removed {
			delete(a.partitions, msg.File)
		} else {
			a.partitions[msg.File] = struct{}{}
		}

	case RunDoneMsg:
		a.done = true
		a.success = msg.Success
		a.message = msg.Message
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("corral") + dimStyle.Render("  corpus partitioning"))
	b.WriteString("\n\n")

	if a.done {
		if a.success {
			b.WriteString(okStyle.Render("✓ " + a.message))
		} else {
			b.WriteString(failStyle.Render("✗ " + a.message))
		}
	} else {
		b.WriteString(fmt.Sprintf("%s attempt %d/%d  %s",
			a.spinner.View(), a.attempt, a.maxAttempts,
			phaseStyle.Render(a.phase)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("partitions: %d", len(a.partitions))))
	b.WriteString("\n\n")

	b.WriteString(a.viewEvents())
	b.WriteString("\n")

	if a.done {
		b.WriteString(dimStyle.Render("Press q to exit"))
	} else {
		b.WriteString(dimStyle.Render("Press q to abort"))
	}
	b.WriteString("\n")
	return b.String()
}

// viewEvents renders the most recent agent activity lines.
func (a *App) viewEvents() string {
	if len(a.events) == 0 {
		return dimStyle.Render("  waiting for agent output...")
	}

	start := 0
	if len(a.events) > maxVisibleEvents {
		start = len(a.events) - maxVisibleEvents
	}

	// Two-space indent, HH:MM:SS timestamp, one separator space.
	const prefixWidth = 11

	var lines []string
	for _, ev := range a.events[start:] {
		ts := ev.Timestamp.Format("15:04:05")
		// Truncate the plain message before styling so the cut can
		// never land inside an escape sequence or a multi-byte rune.
		msg := truncate(ev.Message, a.width-prefixWidth)
		lines = append(lines, fmt.Sprintf("  %s %s",
			dimStyle.Render(ts), eventStyle.Render(msg)))
	}
	return strings.Join(lines, "\n")
}

// truncate clips s to at most max columns of plain text.
func truncate(s string, max int) string {
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// NewProgram creates a Bubbletea program for a run. The returned
// program receives messages via Send().
func NewProgram() (*tea.Program, *App) {
	app := New()
	p := tea.NewProgram(app)
	return p, app
}
