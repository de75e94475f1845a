// Package tui provides a BubbleTea terminal rendition of the quote overlay.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/hitotop/internal/config"
	"github.com/jmylchreest/hitotop/internal/daemon"
	"github.com/jmylchreest/hitotop/internal/quote"
)

// ageRefresh is how often the "updated ... ago" line is re-rendered.
const ageRefresh = 30 * time.Second

// Controller is what the TUI drives. *daemon.App satisfies it.
type Controller interface {
	Refresh()
	Copy() error
	Status() quote.Status
}

// Model is the main TUI model.
type Model struct {
	ctl     Controller
	updates <-chan string

	// Components
	help    help.Model
	spinner spinner.Model
	keys    KeyMap

	// State
	status   quote.Status
	fetching bool
	width    int
	height   int
	ready    bool

	// Status message
	statusMsg string
	statusErr bool

	now func() time.Time
}

// New creates a model. updates delivers the display text after every
// fetch; it may be nil.
func New(ctl Controller, updates <-chan string) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return Model{
		ctl:      ctl,
		updates:  updates,
		help:     help.New(),
		spinner:  s,
		keys:     DefaultKeyMap(),
		status:   ctl.Status(),
		fetching: true,
		now:      time.Now,
	}
}

type quoteMsg struct {
	text string
}

type ageTickMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForUpdate,
		m.spinner.Tick,
		ageTick(),
	)
}

// waitForUpdate blocks until the fetcher publishes new text.
func (m Model) waitForUpdate() tea.Msg {
	if m.updates == nil {
		return nil
	}
	text, ok := <-m.updates
	if !ok {
		return nil
	}
	return quoteMsg{text: text}
}

func ageTick() tea.Cmd {
	return tea.Tick(ageRefresh, func(time.Time) tea.Msg {
		return ageTickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case quoteMsg:
		m.status = m.ctl.Status()
		m.status.Text = msg.text
		m.fetching = false
		return m, m.waitForUpdate

	case ageTickMsg:
		return m, ageTick()

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied to clipboard", isErr: false}
		}
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		ctl := m.ctl
		wasFetching := m.fetching
		m.fetching = true
		cmds := []tea.Cmd{func() tea.Msg {
			ctl.Refresh()
			return nil
		}}
		if !wasFetching {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Copy):
		ctl := m.ctl
		return m, func() tea.Msg {
			return copyResultMsg{err: ctl.Copy()}
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	textWidth := m.width - 4
	if textWidth < 10 {
		textWidth = 10
	}

	quoteStyle := lipgloss.NewStyle().
		Bold(true).
		Width(textWidth).
		Padding(1, 2).
		Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(quoteStyle.Render(m.status.Text))
	b.WriteString("\n")
	b.WriteString(m.renderMeta())
	b.WriteString("\n\n")

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		b.WriteString(statusStyle.Render(m.statusMsg))
	} else {
		b.WriteString(m.help.View(m.keys))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderMeta renders the age, source endpoint and any error of the last
// fetch on one line.
func (m Model) renderMeta() string {
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var parts []string
	if m.fetching {
		parts = append(parts, m.spinner.View()+" fetching")
	}
	if m.status.UpdatedAt.IsZero() {
		parts = append(parts, "never updated")
	} else {
		age := humanize.RelTime(m.status.UpdatedAt, m.now(), "ago", "from now")
		parts = append(parts, fmt.Sprintf("updated %s via %s", age, m.status.Endpoint))
	}

	line := metaStyle.Render(strings.Join(parts, "  ·  "))
	if m.status.LastErr != nil {
		line += "\n" + errStyle.Render(m.status.LastErr.Error())
	}
	return line
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config *config.Config
	Logger *slog.Logger
}

// Run starts a fetcher and the TUI, and blocks until the user quits.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	app := daemon.NewAppFromConfig(cfg, opts.Logger)

	updates := make(chan string, 1)
	app.Fetcher().OnUpdate(func(text string) {
		latest(updates, text)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop()

	p := tea.NewProgram(New(app, updates), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// latest sends text on ch, replacing any value the model has not read yet.
func latest(ch chan string, text string) {
	for {
		select {
		case ch <- text:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
