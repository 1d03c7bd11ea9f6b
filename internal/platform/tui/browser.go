package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/replay"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

// Browser layout constants
const (
	maxReplays = 100 // Max replays to load
)

// BrowserKeyMap defines the key bindings for the replay browser.
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Watch  key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Watch, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Watch},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Watch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "watch"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel lists stored replays and plays the selected one.
type BrowserModel struct {
	pkg     *content.Package
	opts    Options
	replays []storage.ReplayInfo
	table   table.Model
	help    help.Model
	keys    BrowserKeyMap
	status  string
	viewer  *Model

	quitting  bool
	goingBack bool
}

// NewBrowserModel creates a replay browser. Replays are resumed against pkg.
func NewBrowserModel(pkg *content.Package, opts Options) *BrowserModel {
	m := &BrowserModel{
		pkg:  pkg,
		opts: opts,
		keys: DefaultBrowserKeyMap(),
		help: help.New(),
	}
	m.table = m.createTable()
	m.loadReplays()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *BrowserModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Stage", Width: 14},
		{Title: "Players", Width: 8},
		{Title: "Length", Width: 8},
		{Title: "Winner", Width: 12},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.opts.Height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *BrowserModel) loadReplays() {
	m.replays = nil
	if m.opts.Store != nil {
		replays, err := m.opts.Store.ListReplays(maxReplays)
		if err != nil {
			m.status = err.Error()
		}
		m.replays = replays
	}

	rows := make([]table.Row, len(m.replays))
	for i, r := range m.replays {
		winner := r.Winner
		if winner == "" {
			winner = "-"
		}
		rows[i] = table.Row{
			r.ID[:min(8, len(r.ID))],
			r.Stage,
			fmt.Sprintf("%d", r.Players),
			formatFrames(r.Frames),
			winner,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

// formatFrames renders a frame count as m:ss at 60 frames per second.
func formatFrames(frames int) string {
	secs := frames / 60
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Init initializes the browser.
func (m *BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.viewer != nil {
		return m.updateViewer(msg)
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.opts.Embedded {
				return m, nil
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Watch):
			return m, m.watch()

		case key.Matches(msg, m.keys.Delete):
			m.delete()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.opts.Width, m.opts.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-8, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *BrowserModel) selected() (storage.ReplayInfo, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.replays) {
		return storage.ReplayInfo{}, false
	}
	return m.replays[i], true
}

func (m *BrowserModel) watch() tea.Cmd {
	info, ok := m.selected()
	if !ok {
		return nil
	}
	r, err := m.opts.Store.LoadReplay(info.ID)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	g, err := replay.Resume(r, m.pkg, m.opts.Logger)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	opts := m.opts
	opts.Embedded = true
	m.viewer = NewReplayModel(g, opts)
	m.status = ""
	return m.viewer.Init()
}

func (m *BrowserModel) delete() {
	info, ok := m.selected()
	if !ok {
		return
	}
	if err := m.opts.Store.DeleteReplay(info.ID); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "deleted " + info.ID[:min(8, len(info.ID))]
	m.loadReplays()
}

func (m *BrowserModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width, m.opts.Height = wsm.Width, wsm.Height
	}
	_, cmd := m.viewer.Update(msg)
	if m.viewer.quitting {
		m.quitting = true
		return m, tea.Quit
	}
	if m.viewer.Back() {
		m.viewer = nil
		m.loadReplays()
		return m, nil
	}
	return m, cmd
}

// View renders the browser.
func (m *BrowserModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}
	if m.viewer != nil {
		return m.viewer.View()
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText(fmt.Sprintf("REPLAYS (%d)", len(m.replays)), m.opts.Width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	if len(m.replays) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(boxStyle.Render(emptyStyle.Render("No replays recorded yet.\nFinish a match to save one!")))
	} else {
		b.WriteString(boxStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if m.status != "" {
		b.WriteString(helpStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to the menu.
func (m *BrowserModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m *BrowserModel) IsQuitting() bool {
	return m.quitting
}
