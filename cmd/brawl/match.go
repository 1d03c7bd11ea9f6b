package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/match"
)

// Match flags shared by simulate and play
var (
	flagStage      string
	flagFighter    string
	flagOpponents  []string
	flagDifficulty string
	flagStocks     int
	flagTimeLimit  int
)

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagStage, "stage", "", "Stage key (default: match.stage from config)")
	cmd.Flags().StringVar(&flagFighter, "fighter", "", "Fighter key for every player (default: match.fighter)")
	cmd.Flags().StringSliceVar(&flagOpponents, "opponents", nil, "Bot ids, one per opponent (default: match.bots)")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Bot difficulty: easy, normal, hard, fixed")
	cmd.Flags().IntVar(&flagStocks, "stocks", -1, "Stocks per player (0 = unlimited)")
	cmd.Flags().IntVar(&flagTimeLimit, "time", -1, "Time limit in seconds (0 = none)")
}

// matchOptions builds the match for the current flags.
func (e *env) matchOptions(humans bool) (match.Options, error) {
	cfg := e.engine
	if flagStage != "" {
		cfg.Match.Stage = flagStage
	}
	if flagFighter != "" {
		cfg.Match.Fighter = flagFighter
	}
	if len(flagOpponents) > 0 {
		cfg.Match.Bots = flagOpponents
	}
	if flagDifficulty != "" {
		preset := config.DifficultyPreset(flagDifficulty)
		if !preset.Valid() {
			return match.Options{}, fmt.Errorf("unknown difficulty %q", flagDifficulty)
		}
		cfg.Match.Difficulty = preset
	}

	opts := match.OptionsFromEngine(cfg, e.pkg, e.bots, humans, cfg.Runtime(seed()))
	if flagStocks >= 0 {
		opts.Rules.StockCount = flagStocks
	}
	if flagTimeLimit >= 0 {
		opts.Rules.TimeLimitSeconds = flagTimeLimit
	}
	opts.Logger = e.logger
	return opts, nil
}

// printResults writes a results table to stdout.
func printResults(res *game.Results) {
	if res == nil {
		fmt.Println("Match did not finish.")
		return
	}
	end := "all but one eliminated"
	if res.TimeOut {
		end = "time out"
	}
	fmt.Printf("Results at frame %d (%s, %s)\n\n", res.Frame, res.Goal, end)
	fmt.Printf("  %-5s  %-6s  %-12s  %-5s  %-6s  %-6s  %-7s  %s\n",
		"Place", "Player", "Fighter", "Kills", "Deaths", "Stocks", "Damage", "L-cancel")
	fmt.Printf("  %-5s  %-6s  %-12s  %-5s  %-6s  %-6s  %-7s  %s\n",
		"-----", "------", "-------", "-----", "------", "------", "------", "--------")
	for _, p := range res.Players {
		fmt.Printf("  %-5d  %-6d  %-12s  %-5d  %-6d  %-6d  %-7s  %.0f%%\n",
			p.Place, p.Player+1, p.Fighter, p.Kills, p.Deaths, p.Stocks,
			fmt.Sprintf("%.0f%%", p.FinalDamage), p.LCancelPercent)
	}
}
