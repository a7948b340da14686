// Package ui renders a virtualized list in the terminal. It owns the Bubble
// Tea program loop, drives the engine's cooperative scheduler from frame
// ticks, and re-renders row children whenever the engine reports a new
// rendered range.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/HamStudy/vscroll/internal/engine"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout/flow"
	"github.com/HamStudy/vscroll/internal/scheduler"
)

const wheelStep = 3

// KeyMap defines the key bindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Smooth   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup/b", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f"),
			key.WithHelp("pgdn/f", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "jump to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "jump to bottom"),
		),
		Smooth: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "smooth scroll to far end"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	rowStyle    = lipgloss.NewStyle()
	altRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
)

// frameMsg is one animation-frame boundary for the engine's loop.
type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Model is the Bubble Tea model wrapping one virtualized list.
type Model struct {
	keys KeyMap

	term *TermHost
	loop *scheduler.Loop
	eng  *engine.Virtualizer

	items  []string
	width  int
	height int
}

// NewModel builds a connected virtualized list over the given items.
func NewModel(items []string, verbose bool) (*Model, error) {
	m := &Model{
		keys:  DefaultKeyMap(),
		term:  NewTermHost(),
		loop:  scheduler.NewLoop(),
		items: items,
	}

	eng, err := engine.New(engine.Config{
		Host:    m.term,
		Layout:  flow.New(flow.Config{Estimate: 1}),
		Loop:    m.loop,
		Verbose: verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("ui: building engine: %w", err)
	}
	m.eng = eng

	eng.SetOnRangeChanged(m.renderRows)
	eng.SetItems(toAny(items))
	if err := eng.Connect(); err != nil {
		return nil, fmt.Errorf("ui: connecting engine: %w", err)
	}
	m.loop.RunUntilIdle()
	return m, nil
}

// Engine exposes the virtualizer for inspection.
func (m *Model) Engine() *engine.Virtualizer { return m.eng }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frameTick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		viewH := msg.Height - 1 // bottom row is the status bar
		if viewH < 1 {
			viewH = 1
		}
		m.term.SetSize(msg.Width, viewH)
		m.loop.RunUntilIdle()

	case frameMsg:
		m.loop.Frame()
		return m, frameTick()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.term.ScrollBy(-wheelStep)
		case tea.MouseButtonWheelDown:
			m.term.ScrollBy(wheelStep)
		}
		m.loop.RunUntilIdle()

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.loop.RunUntilIdle()
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.term.ScrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.term.ScrollBy(1)
	case key.Matches(msg, m.keys.PageUp):
		m.term.ScrollBy(-m.viewHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.term.ScrollBy(m.viewHeight())
	case key.Matches(msg, m.keys.Top):
		m.eng.ScrollToIndex(0, host.ScrollIntoViewOptions{Block: "start"})
	case key.Matches(msg, m.keys.Bottom):
		m.eng.ScrollToIndex(len(m.items)-1, host.ScrollIntoViewOptions{Block: "end"})
	case key.Matches(msg, m.keys.Smooth):
		target := len(m.items) - 1
		if m.term.ScrollTop() > m.term.ContentHeight()/2 {
			target = 0
		}
		m.eng.ScrollToIndex(target, host.ScrollIntoViewOptions{Behavior: "smooth", Block: "center"})
	}
	return nil
}

// renderRows is the engine's range callback: it materializes row children
// for the new rendered window.
func (m *Model) renderRows(ev engine.RangeChangedEvent) {
	if ev.First < 0 {
		m.term.SetRows(nil)
		return
	}
	rows := make([]Row, 0, ev.Last-ev.First+1)
	for i := ev.First; i <= ev.Last && i < len(m.items); i++ {
		rows = append(rows, Row{Index: i, Lines: SplitLines(m.items[i])})
	}
	m.term.SetRows(rows)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "starting..."
	}
	viewH := m.height - 1
	if viewH < 1 {
		viewH = 1
	}

	lines := make([]string, viewH)
	top := m.term.ScrollTop()
	for _, row := range m.term.RenderedRows() {
		base := int(math.Round(row.Top - top))
		for j, text := range row.Lines {
			r := base + j
			if r < 0 || r >= viewH {
				continue
			}
			st := rowStyle
			if row.Index%2 == 1 {
				st = altRowStyle
			}
			lines[r] = st.Render(truncate.StringWithTail(text, uint(m.width), "…"))
		}
	}

	return strings.Join(lines, "\n") + "\n" + m.statusBar()
}

func (m *Model) statusBar() string {
	r := m.eng.Range()
	s := fmt.Sprintf("%d items  rendered %d-%d  visible %d-%d  row %.0f/%.0f",
		len(m.items), r.First, r.Last, r.FirstVisible, r.LastVisible,
		m.term.ScrollTop(), m.term.ContentHeight())
	if idx, ok := m.eng.ScrollTargetIndex(); ok {
		s += fmt.Sprintf("  → scrolling to %d", idx)
	}
	s += "  (g/G jump, s smooth, q quit)"
	return statusStyle.Width(m.width).Render(s)
}

func (m *Model) viewHeight() float64 {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return float64(h)
}

func toAny(items []string) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
