package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats [fighter]",
	Short: "Show per-fighter statistics from stored matches",
	Long: `Display totals for every fighter, or one fighter, across stored
match results.

Examples:
  brawl stats
  brawl stats brawler`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func runStats(_ *cobra.Command, args []string) {
	e, err := loadEnv()
	if err != nil {
		fail("%v", err)
	}
	store := mustStore(e)
	defer store.Close()

	var stats []*storage.FighterStats
	if len(args) == 1 {
		s, err := store.PlayerStats(args[0])
		if err != nil {
			store.Close()
			fail("%v", err)
		}
		stats = append(stats, s)
	} else {
		all, err := store.AllPlayerStats()
		if err != nil {
			store.Close()
			fail("%v", err)
		}
		for _, s := range all {
			stats = append(stats, s)
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Fighter < stats[j].Fighter })
	}

	if len(stats) == 0 || stats[0].Matches == 0 {
		fmt.Println("No matches recorded yet.")
		return
	}

	fmt.Printf("  %-12s  %-7s  %-5s  %-5s  %-6s  %-5s  %-7s  %s\n",
		"Fighter", "Matches", "Wins", "Kills", "Deaths", "K/D", "Avg dmg", "Avg place")
	fmt.Printf("  %-12s  %-7s  %-5s  %-5s  %-6s  %-5s  %-7s  %s\n",
		"-------", "-------", "----", "-----", "------", "---", "-------", "---------")
	for _, s := range stats {
		fmt.Printf("  %-12s  %-7d  %-5d  %-5d  %-6d  %-5.2f  %-7s  %.2f\n",
			s.Fighter, s.Matches, s.Wins, s.Kills, s.Deaths, s.KillDeathRatio(),
			fmt.Sprintf("%.0f%%", s.AvgDamage), s.AvgPlacing)
	}
}
