package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuChoice is what the user picked from the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoiceFight
	ChoiceReplays
	ChoiceStats
	ChoiceQuit
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
	Detail string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	quitting bool
	selected *MenuItem // Set when user selects an entry
	status   string
}

// NewMenuModel creates a new menu. bots names the opponents of a fight.
func NewMenuModel(bots []string, width, height int) MenuModel {
	return MenuModel{
		items: []MenuItem{
			{Choice: ChoiceFight, Title: "Fight", Detail: "vs " + strings.Join(bots, ", ")},
			{Choice: ChoiceReplays, Title: "Replays", Detail: "watch saved matches"},
			{Choice: ChoiceStats, Title: "Stats", Detail: "per-fighter totals"},
			{Choice: ChoiceQuit, Title: "Quit"},
		},
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		selected := m.items[m.cursor]
		if selected.Choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &selected
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	active := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	lines := []string{title.Render("B R A W L"), ""}
	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = active.Render("> " + item.Title)
		}
		if item.Detail != "" {
			line += dim.Render("  " + item.Detail)
		}
		lines = append(lines, line)
	}
	if m.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status))
	}
	lines = append(lines, "", dim.Render("up/down: navigate  enter: select  q: quit"))

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(max(m.width, lipgloss.Width(block)), max(m.height, lipgloss.Height(block)),
		lipgloss.Center, lipgloss.Center, block)
}

// SetStatus shows a one-line message under the entries.
func (m *MenuModel) SetStatus(status string) {
	m.status = status
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
