package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/platform/tui"
	"github.com/vovakirdan/brawl-core/internal/replay"
	"github.com/vovakirdan/brawl-core/internal/storage"
)

var (
	flagReplayLimit int
	flagReplayFile  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Manage saved replays",
	Long: `List, inspect, verify, export, import, delete and watch replays.

Replays are addressed by id; any unique prefix of an id works. With --file
the argument of show, verify and watch is a replay file instead.

Examples:
  brawl replay list
  brawl replay show 3f2a
  brawl replay verify 3f2a
  brawl replay export 3f2a match.replay
  brawl replay import match.replay
  brawl replay watch --file match.replay`,
}

var replayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored replays, most recent first",
	Args:  cobra.NoArgs,
	Run:   runReplayList,
}

var replayShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a replay's setup and results",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayShow,
}

var replayVerifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Re-simulate a replay and check it reproduces the recorded match",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayVerify,
}

var replayExportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write a stored replay to a file",
	Args:  cobra.ExactArgs(2),
	Run:   runReplayExport,
}

var replayImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a replay file",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayImport,
}

var replayDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored replay and its results",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayDelete,
}

var replayWatchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Watch a replay, or browse stored replays without an id",
	Long: `Watch a replay in the terminal. Without an id the replay browser opens.

While watching, space pauses, , and . step one frame, [ rewinds and ]
plays forward again from history.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReplayWatch,
}

func init() {
	replayListCmd.Flags().IntVar(&flagReplayLimit, "limit", 20, "Maximum replays to list")
	for _, cmd := range []*cobra.Command{replayShowCmd, replayVerifyCmd, replayWatchCmd} {
		cmd.Flags().BoolVar(&flagReplayFile, "file", false, "Read the replay from a file instead of the database")
	}

	replayCmd.AddCommand(replayListCmd)
	replayCmd.AddCommand(replayShowCmd)
	replayCmd.AddCommand(replayVerifyCmd)
	replayCmd.AddCommand(replayExportCmd)
	replayCmd.AddCommand(replayImportCmd)
	replayCmd.AddCommand(replayDeleteCmd)
	replayCmd.AddCommand(replayWatchCmd)
}

// mustStore opens the replay database or exits.
func mustStore(e *env) *storage.Store {
	store, err := e.openStore()
	if err != nil {
		fail("%v", err)
	}
	return store
}

// readReplayFile decodes a replay file.
func readReplayFile(path string) (*replay.Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return replay.Decode(f)
}

// loadReplay reads arg as a file with --file, otherwise as a stored id.
func loadReplay(e *env, arg string) *replay.Replay {
	if flagReplayFile {
		r, err := readReplayFile(arg)
		if err != nil {
			fail("%v", err)
		}
		return r
	}
	store := mustStore(e)
	defer store.Close()
	r, err := store.LoadReplay(arg)
	if err != nil {
		fail("%v", err)
	}
	return r
}

func runReplayList(_ *cobra.Command, _ []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	store := mustStore(e)
	defer store.Close()

	replays, err := store.ListReplays(flagReplayLimit)
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	if len(replays) == 0 {
		fmt.Println("No replays recorded yet.")
		fmt.Println()
		fmt.Println("Run 'brawl simulate --save' or finish a match in 'brawl play' to record one.")
		return
	}

	fmt.Printf("  %-8s  %-14s  %-7s  %-7s  %-12s  %s\n", "ID", "Stage", "Players", "Length", "Winner", "Date")
	fmt.Printf("  %-8s  %-14s  %-7s  %-7s  %-12s  %s\n", "--", "-----", "-------", "------", "------", "----")
	for _, r := range replays {
		winner := r.Winner
		if winner == "" {
			winner = "-"
		}
		fmt.Printf("  %-8s  %-14s  %-7d  %-7s  %-12s  %s\n",
			r.ID[:min(8, len(r.ID))], r.Stage, r.Players, formatFrames(r.Frames), winner,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// formatFrames renders a frame count as m:ss at 60 frames per second.
func formatFrames(frames int) string {
	secs := frames / 60
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func runReplayShow(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	r := loadReplay(e, args[0])

	fighters := make([]string, len(r.Players))
	for i, p := range r.Players {
		fighters[i] = p.Fighter
		if i < len(r.Bots) && r.Bots[i] != "" {
			fighters[i] += " (" + r.Bots[i] + ")"
		}
	}

	fmt.Printf("Replay   %s\n", r.ID)
	fmt.Printf("Recorded %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Stage    %s\n", r.Stage)
	fmt.Printf("Players  %s\n", strings.Join(fighters, ", "))
	fmt.Printf("Seed     %d\n", r.InitSeed)
	fmt.Printf("Length   %s (%d frames)\n", formatFrames(r.Frame), r.Frame)
	fmt.Printf("Content  %.12s\n", r.PackageHash)
	fmt.Printf("Digest   %.12s\n", r.Digest)
	if r.PackageHash != e.pkg.Hash() {
		fmt.Println("Warning: recorded with different content; it cannot be watched or verified.")
	}
	fmt.Println()
	printResults(r.Results)
}

func runReplayVerify(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	r := loadReplay(e, args[0])
	if err := replay.Verify(r, e.pkg); err != nil {
		fail("replay %s: %v", r.ID, err)
	}
	fmt.Printf("Replay %s verified: %d frames, digest %.12s\n", r.ID, r.Frame, r.Digest)
}

func runReplayExport(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	flagReplayFile = false
	r := loadReplay(e, args[0])

	f, err := os.Create(args[1])
	if err != nil {
		fail("%v", err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		fail("%v", err)
	}
	if err := f.Close(); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Exported replay %s to %s\n", r.ID, args[1])
}

func runReplayImport(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	r, err := readReplayFile(args[0])
	if err != nil {
		fail("%v", err)
	}
	store := mustStore(e)
	defer store.Close()
	if err := store.SaveReplay(r); err != nil {
		store.Close()
		fail("%v", err)
	}
	fmt.Printf("Imported replay %s\n", r.ID)
}

func runReplayDelete(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	store := mustStore(e)
	defer store.Close()
	if err := store.DeleteReplay(args[0]); err != nil {
		store.Close()
		fail("%v", err)
	}
	fmt.Printf("Deleted replay %s\n", args[0])
}

func runReplayWatch(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	opts := e.tuiOptions(nil)

	if len(args) == 0 {
		store := mustStore(e)
		defer store.Close()
		opts.Store = store
		if err := tui.Run(tui.NewBrowserModel(e.pkg, opts)); err != nil {
			store.Close()
			fail("%v", err)
		}
		return
	}

	r := loadReplay(e, args[0])
	g, err := replay.Resume(r, e.pkg, nil)
	if err != nil {
		fail("%v", err)
	}
	if err := tui.Run(tui.NewReplayModel(g, opts)); err != nil {
		fail("%v", err)
	}
}
