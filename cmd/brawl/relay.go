package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/netplay"
)

var flagRelayListen string

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Start the netplay relay",
	Long: `Start the websocket relay that pairs netplay peers.

A host creates a lobby and gets a four character code; the joiner enters
the code and the relay forwards inputs between them. Clients connect to
ws://<listen>/ws.

Examples:
  brawl relay
  brawl relay --listen :9000`,
	Run: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&flagRelayListen, "listen", "", "Address to listen on (default: relay.listen)")
}

func runRelay(_ *cobra.Command, _ []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	addr := e.engine.Relay.Listen
	if flagRelayListen != "" {
		addr = flagRelayListen
	}
	logger := e.logger.WithPrefix("brawl-relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := netplay.NewRelay(netplay.RelayConfigFrom(e.engine.Relay), logger)
	go relay.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           relay.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("starting relay", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		relay.Close()
		fail("relay: %v", err)
	}
	relay.Close()
}
