package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/match"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Engine  config.Engine
	Bots    config.BotConfig
	Package *content.Package

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// SSHServer wraps a Wish SSH server. Every session gets the main menu:
// a fight against bots, the replay browser, or fighter stats.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "brawl-ssh",
		Level:           cfg.Engine.Level(),
	})
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}

	store, err := storage.Open(cfg.Engine.DBPath)
	if err != nil {
		logger.Warn("could not open replay database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath, err := storage.ExpandHomePath(cfg.Engine.HostKey)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve host key path: %w", err)
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Engine.SSH.Addr()),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	opts := Options{
		Store:    s.store,
		TickRate: s.config.Engine.Runtime(0).TickRate,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
		Logger:   s.logger.With("user", sess.User()),
		Embedded: true,
	}
	model := NewSessionModel(s.config, opts)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.Addr())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Engine.SSH.Addr()
}

// SessionModel manages the full session flow: menu -> screen -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	config SSHServerConfig
	opts   Options

	menu    MenuModel
	match   *Model
	browser *BrowserModel
	stats   *StatsModel
	err     string

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg SSHServerConfig, opts Options) *SessionModel {
	return &SessionModel{
		config: cfg,
		opts:   opts,
		menu:   NewMenuModel(cfg.Engine.Match.Bots, opts.Width, opts.Height),
	}
}

// Init initializes the session.
func (m *SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width, m.opts.Height = wsm.Width, wsm.Height
	}

	switch {
	case m.match != nil:
		_, cmd := m.match.Update(msg)
		if m.match.quitting {
			m.quitting = true
			return m, tea.Quit
		}
		if m.match.Back() {
			m.match = nil
			return m.toMenu()
		}
		return m, cmd

	case m.browser != nil:
		_, cmd := m.browser.Update(msg)
		if m.browser.IsQuitting() {
			m.quitting = true
			return m, tea.Quit
		}
		if m.browser.IsGoingBack() {
			m.browser = nil
			return m.toMenu()
		}
		return m, cmd

	case m.stats != nil:
		next, cmd := m.stats.Update(msg)
		stats := next.(StatsModel)
		m.stats = &stats
		if stats.IsQuitting() {
			m.quitting = true
			return m, tea.Quit
		}
		if stats.IsGoingBack() {
			m.stats = nil
			return m.toMenu()
		}
		return m, cmd
	}

	return m.updateMenu(msg)
}

func (m *SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.menu = NewMenuModel(m.config.Engine.Match.Bots, m.opts.Width, m.opts.Height)
	m.menu.SetStatus(m.err)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m *SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menuModel, ok := next.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.err = ""

	switch selected.Choice {
	case ChoiceFight:
		opts := match.OptionsFromEngine(m.config.Engine, m.config.Package, m.config.Bots, true,
			m.config.Engine.Runtime(uint64(time.Now().UnixNano())))
		opts.Logger = m.opts.Logger
		local, err := match.New(opts)
		if err != nil {
			m.err = err.Error()
			return m.toMenu()
		}
		m.match = NewMatchModel(local, m.opts)
		return m, m.match.Init()

	case ChoiceReplays:
		m.browser = NewBrowserModel(m.config.Package, m.opts)
		return m, m.browser.Init()

	case ChoiceStats:
		stats := NewStatsModel(m.opts.Store, m.opts.Width, m.opts.Height)
		m.stats = &stats
		return m, stats.Init()
	}
	return m, cmd
}

// View renders the current view.
func (m *SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.match != nil:
		return m.match.View()
	case m.browser != nil:
		return m.browser.View()
	case m.stats != nil:
		return m.stats.View()
	}
	return m.menu.View()
}
