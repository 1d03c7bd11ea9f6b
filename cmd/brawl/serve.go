package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the brawl SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a menu: fight the configured
bots, browse and watch replays, or view fighter stats. Replays and stats
are stored per-server (all users share the same database).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses host_key from the engine config, generating it if missing

Examples:
  brawl serve                           # Listen on ssh.host:ssh.port from config
  brawl serve --ssh :2222               # Listen on port 2222
  brawl serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	if flagSSHAddr != "" {
		if err := e.engine.SSH.Set(flagSSHAddr); err != nil {
			fail("--ssh: %v", err)
		}
	}
	if flagHostKey != "" {
		e.engine.HostKey = flagHostKey
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Engine:      e.engine,
		Bots:        e.bots,
		Package:     e.pkg,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	})
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting brawl SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}
