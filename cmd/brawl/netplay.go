package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/match"
	"github.com/vovakirdan/brawl-core/internal/netplay"
	"github.com/vovakirdan/brawl-core/internal/platform/tui"
)

var flagRelayURL string

var netplayCmd = &cobra.Command{
	Use:   "netplay",
	Short: "Host or join a match over the relay",
	Long: `Play a two player match against another terminal through a relay.

The host creates a lobby and shares the four character code it prints.
Both sides must run the same content package, stage, fighter and rules;
the host's seed is used.

Examples:
  brawl netplay host
  brawl netplay join K7QZ
  brawl netplay host --relay ws://relay.example.com:8765/ws`,
}

var netplayHostCmd = &cobra.Command{
	Use:   "host",
	Short: "Create a lobby and wait for a peer",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		runNetplay(true, "")
	},
}

var netplayJoinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a lobby by its code",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runNetplay(false, args[0])
	},
}

func init() {
	netplayCmd.PersistentFlags().StringVar(&flagRelayURL, "relay", "", "Relay websocket URL (default: relay.url)")
	addMatchFlags(netplayHostCmd)
	addMatchFlags(netplayJoinCmd)
	netplayCmd.AddCommand(netplayHostCmd)
	netplayCmd.AddCommand(netplayJoinCmd)
}

func runNetplay(host bool, code string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	opts, err := e.matchOptions(true)
	if err != nil {
		fail("%v", err)
	}
	// The terminal belongs to the match; keep the log out of it.
	opts.Logger = nil

	url := e.engine.Relay.URL
	if flagRelayURL != "" {
		url = flagRelayURL
	}
	// Peers must agree on the whole match setup, not only the content.
	setup := fmt.Sprintf("%s|%s|%s|%+v", e.pkg.Hash(), opts.Stage, opts.Fighter, opts.Rules)
	clientOpts := netplay.Options{
		URL:         url,
		PackageHash: setup,
		Seed:        opts.Seed,
		Netplay:     e.engine.Netplay,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var client *netplay.Client
	if host {
		client, err = netplay.Host(ctx, clientOpts)
	} else {
		client, err = netplay.Join(ctx, clientOpts, code)
	}
	if err != nil {
		fail("%v", err)
	}
	defer client.Disconnect()

	store, err := e.openStore()
	if err != nil {
		e.logger.Warn("continuing without replays", "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	start := func(c *netplay.Client) (*game.Game, error) {
		return match.NewNetplay(opts, c)
	}
	lobby := tui.NewLobbyModel(client, host, start, e.tuiOptions(store))
	if err := tui.Run(lobby); err != nil {
		fail("%v", err)
	}
	if err := lobby.Err(); err != nil {
		fail("%v", err)
	}
	if g := lobby.Game(); g != nil {
		printResults(g.Results())
		if q := g.QuitInfo(); q.Reason == game.QuitDisconnected {
			fmt.Printf("\nDisconnected: %s\n", q.Message)
		}
	}
}
