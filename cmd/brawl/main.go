// brawl runs platform-fighter matches in the terminal.
//
// Usage:
//
//	brawl simulate             - Run a headless match between bots
//	brawl play                 - Play a local match against bots
//	brawl replay <command>     - List, inspect, verify and watch saved replays
//	brawl serve                - Start SSH server for remote play
//	brawl relay                - Start the netplay relay
//	brawl netplay host|join    - Play a match over the relay
//	brawl stats                - Show per-fighter statistics
//	brawl content check        - Validate a content package
//
// Global flags:
//
//	--config <path>    - Engine config (default: search ~/.brawl/configs, ./configs)
//	--bots <path>      - Bot tuning config
//	--seed <value>     - Match seed (0 = random based on time)
//	--db <path>        - Replay database path (overrides db_path)
//	--log-level <lvl>  - debug, info, warn or error (overrides log_level)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import bots to register them
	_ "github.com/vovakirdan/brawl-core/internal/bots"
	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagBots     string
	flagSeed     uint64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brawl",
	Short: "Brawl - a deterministic platform fighter in your terminal",
	Long: `Brawl simulates platform-fighter matches frame by frame. Every match
can be saved as a replay and re-simulated exactly from its inputs.

Available commands:
  simulate - Run a headless match between bots
  play     - Play a local match against bots
  replay   - Manage saved replays
  serve    - Start SSH server for remote play
  relay    - Start the netplay relay
  netplay  - Host or join a match over the relay
  stats    - Show per-fighter statistics
  content  - Inspect content packages

Examples:
  brawl simulate --frames 3600 --save
  brawl play --seed 42
  brawl replay list
  brawl netplay host`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagBots, "bots", "", "Path to bot tuning YAML")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Match seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to replay database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(netplayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(contentCmd)
}

// env is what every command loads before it runs.
type env struct {
	engine config.Engine
	bots   config.BotConfig
	pkg    *content.Package
	logger *log.Logger
}

// loadEnv reads configuration and content, applying the global flags.
func loadEnv() (*env, error) {
	engine, err := config.LoadEngine(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		engine.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		if _, err := log.ParseLevel(flagLogLevel); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		engine.LogLevel = flagLogLevel
	}

	bots, err := config.LoadBots(flagBots)
	if err != nil {
		return nil, err
	}

	pkg, err := content.Load(engine.Content)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "brawl",
		Level:           engine.Level(),
	})
	return &env{engine: engine, bots: bots, pkg: pkg, logger: logger}, nil
}

// seed returns --seed, or a time-based seed when it is unset.
func seed() uint64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return uint64(time.Now().UnixNano())
}

// openStore opens the replay database.
func (e *env) openStore() (*storage.Store, error) {
	store, err := storage.Open(e.engine.DBPath)
	if err != nil {
		return nil, fmt.Errorf("could not open replay database: %w", err)
	}
	return store, nil
}

// fail prints err and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
