package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/match"
)

var (
	flagFrames int
	flagSave   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless match between bots",
	Long: `Simulate a match without a terminal UI. Every seat is driven by a bot.

The match runs for --frames frames, or until it ends when --frames is 0.
With --save the match is stored as a replay.

Examples:
  brawl simulate
  brawl simulate --opponents chaser,random,idle --frames 600
  brawl simulate --seed 42 --save`,
	Run: runSimulate,
}

func init() {
	addMatchFlags(simulateCmd)
	simulateCmd.Flags().IntVar(&flagFrames, "frames", 0, "Frames to simulate (0 = until the match ends)")
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Store the match as a replay")
}

func runSimulate(_ *cobra.Command, _ []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	opts, err := e.matchOptions(false)
	if err != nil {
		fail("%v", err)
	}
	if len(opts.Seats) < 2 {
		fail("a match needs at least two bots, got %d", len(opts.Seats))
	}

	local, err := match.New(opts)
	if err != nil {
		fail("%v", err)
	}

	start := time.Now()
	state := local.Run(flagFrames)
	elapsed := time.Since(start)

	e.logger.Info("simulation finished",
		"frames", local.Game.Frame(),
		"elapsed", elapsed.Round(time.Millisecond),
		"seed", local.Game.InitSeed(),
	)
	fmt.Printf("Simulated %d frames with seed %d\n", local.Game.Frame(), local.Game.InitSeed())
	fmt.Printf("Digest: %s\n\n", local.Game.Digest())
	if state == game.StateQuit {
		printResults(local.Game.Results())
	} else {
		fmt.Println("Match still running.")
	}

	if !flagSave {
		return
	}
	store, err := e.openStore()
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()
	r := local.Replay()
	if err := store.SaveReplay(r); err != nil {
		fail("could not save replay: %v", err)
	}
	fmt.Printf("\nSaved replay %s\n", r.ID)
}
