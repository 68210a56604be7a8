// Package tui renders a live terminal monitor for extraction runs,
// driven by progress bus events.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/s4bridge/s4bridge/internal/bus"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// recentShown caps the rolling list of finished extractors in the view.
const recentShown = 8

// eventMsg delivers one bus event to the model.
type eventMsg bus.Event

// Monitor is the bubbletea model for watching an extraction run.
type Monitor struct {
	spinner   spinner.Model
	events    <-chan bus.Event
	runID     string
	mode      string
	total     int
	completed int
	recent    []string
	failed    []string
	errMsg    string
	done      bool
	cancelled bool
	width     int
}

// NewMonitor creates a monitor fed from the given event channel.
func NewMonitor(events <-chan bus.Event) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Monitor{
		spinner: s,
		events:  events,
		width:   80,
	}
}

// Done reports whether the monitored run finished.
func (m Monitor) Done() bool { return m.done }

// Cancelled reports whether the user quit before the run finished.
func (m Monitor) Cancelled() bool { return m.cancelled }

func waitForEvent(events <-chan bus.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return eventMsg(ev)
	}
}

func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m = m.apply(bus.Event(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	}

	return m, nil
}

// apply folds one bus event into the run picture.
func (m Monitor) apply(ev bus.Event) Monitor {
	data, _ := ev.Data.(map[string]any)
	switch ev.Type {
	case bus.ExtractionStart:
		m.runID = asString(data["runId"])
		m.mode = asString(data["mode"])
		m.total = asInt(data["total"])

	case bus.ExtractionProgress:
		m.completed = asInt(data["completed"])
		if m.total == 0 {
			m.total = asInt(data["total"])
		}
		if id := asString(data["extractorId"]); id != "" {
			m.recent = append(m.recent, id)
			if len(m.recent) > recentShown {
				m.recent = m.recent[len(m.recent)-recentShown:]
			}
		}

	case bus.ExtractionComplete:
		for _, f := range asStrings(data["failed"]) {
			m.failed = append(m.failed, f)
		}
		m.done = true

	case bus.ExtractionError:
		m.errMsg = asString(data["reason"])
		if m.errMsg == "" {
			m.errMsg = asString(data["error"])
		}
		m.done = true
	}
	return m
}

func (m Monitor) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Extraction Run"))
	b.WriteString("\n\n")

	if m.runID == "" {
		b.WriteString(fmt.Sprintf("  %s Waiting for run to start...\n", m.spinner.View()))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  Run:  %s\n", m.runID))
	b.WriteString(fmt.Sprintf("  Mode: %s\n\n", highlightStyle.Render(m.mode)))

	if m.total > 0 {
		pct := float64(m.completed) / float64(m.total) * 100
		bar := renderProgressBar(pct, m.width-20)
		b.WriteString(fmt.Sprintf("  %s %.0f%%\n", bar, pct))
		b.WriteString(fmt.Sprintf("  %d / %d extractors\n\n", m.completed, m.total))
	}

	for _, id := range m.recent {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ✓ %s", id)))
		b.WriteString("\n")
	}

	switch {
	case m.errMsg != "":
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("  Run stopped: %s", m.errMsg)))
		b.WriteString("\n")
	case m.done && len(m.failed) > 0:
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("  Completed with %d failed: %s", len(m.failed), strings.Join(m.failed, ", "))))
		b.WriteString("\n")
	case m.done:
		b.WriteString("\n")
		b.WriteString(successStyle.Render("  Extraction complete"))
		b.WriteString("\n")
	default:
		b.WriteString(fmt.Sprintf("\n  %s extracting...  %s\n", m.spinner.View(), dimStyle.Render("q to quit")))
	}

	return b.String()
}

func renderProgressBar(pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	empty := width - filled
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", empty) + "]"
}

// Watch subscribes to the bus and runs the monitor until the run ends
// or the user quits. Events arriving faster than the terminal renders
// are buffered; overflow is dropped rather than blocking the bus.
func Watch(events *bus.Bus) error {
	ch := make(chan bus.Event, 256)
	unsubscribe := events.Subscribe(func(ev bus.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	defer unsubscribe()

	p := tea.NewProgram(NewMonitor(ch))
	_, err := p.Run()
	return err
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, asString(item))
		}
		return out
	}
	return nil
}
