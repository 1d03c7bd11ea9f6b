package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect content packages",
}

var contentCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a content package",
	Long: `Load and validate a content package: every fighter, item, projectile and
stage is checked, and the package hash is printed. Without a file the
configured package (or the built-in default) is checked.

Examples:
  brawl content check
  brawl content check ./my-content.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runContentCheck,
}

func init() {
	contentCmd.AddCommand(contentCheckCmd)
}

func runContentCheck(_ *cobra.Command, args []string) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		e, err := loadEnv()
		if err != nil {
			fail("%v", err)
		}
		path = e.engine.Content
	}

	pkg, err := content.Load(path)
	if err != nil {
		fail("%v", err)
	}
	if err := pkg.Validate(); err != nil {
		fail("%v", err)
	}

	name := path
	if name == "" {
		name = "built-in package"
	}
	fmt.Printf("%s is valid\n\n", name)
	fmt.Printf("  Fighters     %v\n", pkg.EntityKeys(action.KindFighter))
	fmt.Printf("  Items        %v\n", pkg.EntityKeys(action.KindItem))
	fmt.Printf("  Projectiles  %v\n", pkg.EntityKeys(action.KindProjectile))
	fmt.Printf("  Stages       %v\n", pkg.StageKeys())
	fmt.Printf("  Hash         %s\n", pkg.Hash())
}
