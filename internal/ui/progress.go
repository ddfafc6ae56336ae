package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"c0check/internal/runner"
)

// maxRecent bounds the list of finished non-passing tests shown.
const maxRecent = 8

type progressModel struct {
	title   string
	events  <-chan runner.Event
	spinner spinner.Model
	prog    progress.Model
	total   int
	// running maps input index to test name.
	running map[int]string
	counts  map[runner.Status]int
	recent  []runner.Event
	width   int
	done    bool
	// interrupted is set when the user quit before the run finished.
	interrupted bool
}

type eventMsg runner.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a test run fed by events. The model quits when events is closed.
func NewProgressModel(title string, total int, events <-chan runner.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		total:   total,
		running: make(map[int]string),
		counts:  make(map[runner.Status]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(runner.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// Interrupted reports whether the user quit model before its run ended.
func Interrupted(model tea.Model) bool {
	m, ok := model.(*progressModel)
	return ok && m.interrupted && !m.done
}

func (m *progressModel) finished() int {
	n := 0
	for st, c := range m.counts {
		if st.Finished() {
			n += c
		}
	}
	return n
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished(), m.total)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.countsLine())
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)

	indices := make([]int, 0, len(m.running))
	for i := range m.running {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(runner.StatusRunning).Render(fmt.Sprintf("%12s", runner.StatusRunning)), truncate(m.running[i], nameWidth))
	}
	for _, ev := range m.recent {
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(ev.Status).Render(fmt.Sprintf("%12s", ev.Status)), truncate(ev.Test, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) countsLine() string {
	parts := []string{
		styleStatus(runner.StatusPassed).Render(fmt.Sprintf("%d passed", m.counts[runner.StatusPassed]+m.counts[runner.StatusInapplicable])),
		styleStatus(runner.StatusFailed).Render(fmt.Sprintf("%d failed", m.counts[runner.StatusFailed])),
		styleStatus(runner.StatusTimeout).Render(fmt.Sprintf("%d timeouts", m.counts[runner.StatusTimeout])),
		styleStatus(runner.StatusError).Render(fmt.Sprintf("%d errors", m.counts[runner.StatusError])),
	}
	return "  " + strings.Join(parts, "  ")
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev runner.Event) tea.Cmd {
	switch {
	case ev.Status == runner.StatusQueued:
		return nil
	case ev.Status == runner.StatusRunning:
		m.running[ev.Index] = ev.Test
		return nil
	case ev.Status.Finished():
		delete(m.running, ev.Index)
		m.counts[ev.Status]++
		if ev.Status != runner.StatusPassed && ev.Status != runner.StatusInapplicable {
			m.recent = append(m.recent, ev)
			if len(m.recent) > maxRecent {
				m.recent = m.recent[len(m.recent)-maxRecent:]
			}
		}
	}
	if m.total == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(m.finished()) / float64(m.total))
}

func styleStatus(status runner.Status) lipgloss.Style {
	switch status {
	case runner.StatusPassed, runner.StatusInapplicable:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case runner.StatusFailed, runner.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case runner.StatusTimeout:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case runner.StatusRunning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// truncate shortens value to width terminal cells.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
