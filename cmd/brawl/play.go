package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/brawl-core/internal/match"
	"github.com/vovakirdan/brawl-core/internal/platform/tui"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a local match against bots",
	Long: `Start a local match. You are player 1; the other seats are bots.

Controls:
  Arrows/WASD  - Move
  J            - Attack
  K            - Special
  L            - Jump
  ;            - Shield
  G            - Grab
  Enter        - Start (pause when the rules allow it)
  Q/Ctrl+C     - Quit

Debug keys:
  Space        - Pause/resume
  , / .        - Step one frame backward/forward
  [ / ]        - Replay backwards/forwards from history
  }            - Replay forwards from recorded input

Examples:
  brawl play
  brawl play --opponents chaser,chaser --difficulty hard
  brawl play --stage final --stocks 2`,
	Run: runPlay,
}

func init() {
	addMatchFlags(playCmd)
}

// tuiOptions sizes the match screens to the terminal. The runtime screen
// size is used when stdout is not a terminal.
func (e *env) tuiOptions(store *storage.Store) tui.Options {
	rt := e.engine.Runtime(0)
	width, height := rt.ScreenW, rt.ScreenH
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return tui.Options{Store: store, TickRate: rt.TickRate, Width: width, Height: height}
}

func runPlay(_ *cobra.Command, _ []string) {
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
	local, err := match.New(opts)
	if err != nil {
		fail("%v", err)
	}

	store, err := e.openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		// Continue without storage - the match still works
		store = nil
	}

	model := tui.NewMatchModel(local, e.tuiOptions(store))
	runErr := tui.Run(model)

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fail("running match: %v", runErr)
	}
	if res := local.Game.Results(); res != nil {
		printResults(res)
	}
}
