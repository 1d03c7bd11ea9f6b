package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/netplay"
)

// StartFunc builds the networked game once both peers are connected.
type StartFunc func(client *netplay.Client) (*game.Game, error)

type peerReadyMsg struct{ err error }

// LobbyModel waits for the netplay handshake, then runs the match.
type LobbyModel struct {
	client *netplay.Client
	host   bool
	start  StartFunc
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	match    *Model
	err      error
	quitting bool
}

// NewLobbyModel waits on a connected client. host selects the waiting text.
func NewLobbyModel(client *netplay.Client, host bool, start StartFunc, opts Options) *LobbyModel {
	ctx, cancel := context.WithCancel(context.Background())
	return &LobbyModel{
		client: client,
		host:   host,
		start:  start,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Init waits for the peer.
func (m *LobbyModel) Init() tea.Cmd {
	return func() tea.Msg {
		return peerReadyMsg{err: m.client.Wait(m.ctx)}
	}
}

// Update handles messages.
func (m *LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.match != nil {
		_, cmd := m.match.Update(msg)
		if m.match.quitting {
			m.quitting = true
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case peerReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		g, err := m.start(m.client)
		if err != nil {
			m.err = err
			m.client.Disconnect()
			return m, nil
		}
		m.match = NewNetplayModel(g, m.client, m.opts)
		return m, m.match.Init()

	case tea.WindowSizeMsg:
		m.opts.Width, m.opts.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.client.Disconnect()
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// Err returns why the lobby failed, if it did.
func (m *LobbyModel) Err() error { return m.err }

// Game returns the match once it has started.
func (m *LobbyModel) Game() *game.Game {
	if m.match == nil {
		return nil
	}
	return m.match.Game()
}

// View renders the current state.
func (m *LobbyModel) View() string {
	if m.quitting {
		return ""
	}
	if m.match != nil {
		return m.match.View()
	}

	w := m.opts.Width
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(centerText("NETPLAY FAILED", w))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.err.Error(), w))
	case m.host:
		b.WriteString(centerText("HOSTING GAME", w))
		b.WriteString("\n\n")
		b.WriteString(centerText("Share this code with your opponent:", w))
		b.WriteString("\n\n")
		b.WriteString(centerText(fmt.Sprintf("[ %s ]", m.client.Code()), w))
		b.WriteString("\n\n")
		b.WriteString(centerText("Waiting for player to join...", w))
	default:
		b.WriteString(centerText("CONNECTING", w))
		b.WriteString("\n\n")
		b.WriteString(centerText(fmt.Sprintf("Joining game: %s", m.client.Code()), w))
		b.WriteString("\n\n")
		b.WriteString(centerText("Please wait...", w))
	}
	b.WriteString("\n\n")
	b.WriteString(centerText("Q: Quit", w))
	return b.String()
}
