package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brawl-core/internal/storage"
)

// StatsModel shows per-fighter totals from stored results.
type StatsModel struct {
	table     table.Model
	empty     bool
	err       error
	width     int
	goingBack bool
	quitting  bool
}

// NewStatsModel loads every fighter's stats from store.
func NewStatsModel(store *storage.Store, width, height int) StatsModel {
	m := StatsModel{width: width}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Fighter", Width: 12},
			{Title: "Matches", Width: 8},
			{Title: "Wins", Width: 6},
			{Title: "K/D", Width: 6},
			{Title: "Avg dmg", Width: 8},
			{Title: "Avg place", Width: 10},
		}),
		table.WithHeight(max(height-6, 3)),
	)

	var stats map[string]*storage.FighterStats
	if store != nil {
		stats, m.err = store.AllPlayerStats()
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		s := stats[name]
		rows = append(rows, table.Row{
			s.Fighter,
			fmt.Sprintf("%d", s.Matches),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%.2f", s.KillDeathRatio()),
			fmt.Sprintf("%.0f%%", s.AvgDamage),
			fmt.Sprintf("%.2f", s.AvgPlacing),
		})
	}
	t.SetRows(rows)
	m.table = t
	m.empty = len(rows) == 0
	return m
}

// Init initializes the stats model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the stats screen.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.quitting = true
			return m, tea.Quit
		case MenuActionBack, MenuActionSelect:
			m.goingBack = true
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(msg.Height-6, 3))
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the stats table.
func (m StatsModel) View() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	b.WriteString(title.Render(centerText("FIGHTER STATS", m.width)))
	b.WriteString("\n\n")
	switch {
	case m.err != nil:
		b.WriteString(dim.Render(m.err.Error()))
	case m.empty:
		b.WriteString(dim.Italic(true).Render("No matches recorded yet."))
	default:
		b.WriteString(m.table.View())
	}
	b.WriteString("\n\n")
	b.WriteString(dim.Render("esc: back  q: quit"))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to the menu.
func (m StatsModel) IsGoingBack() bool { return m.goingBack }

// IsQuitting returns true if user wants to quit entirely.
func (m StatsModel) IsQuitting() bool { return m.quitting }
