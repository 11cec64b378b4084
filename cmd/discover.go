package cmd

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mellonpizza/callisto/internal/descriptor"
)

// discoverRule maps a glob pattern, relative to the project root, to the
// descriptor symbol a matching file most likely represents. Order matters:
// earlier rules are tried first and a file matching more than one rule is
// only reported once.
type discoverRule struct {
	symbol  descriptor.Symbol
	pattern string
}

var discoverRules = []discoverRule{
	{descriptor.Module, "Modules/**/*.asm"},
	{descriptor.Pixi, "Pixi/**/*.asm"},
	{descriptor.Patch, "**/*.asm"},
	{descriptor.Levels, "Levels/**/*.mwl"},
	{descriptor.Graphics, "Graphics/**/*.bin"},
	{descriptor.ExGraphics, "ExGraphics/**/*.bin"},
	{descriptor.TextMap16, "**/*.map16.txt"},
	{descriptor.BinaryMap16, "**/*.map16"},
}

var discoverCmd = &cobra.Command{
	Use:          "discover",
	Short:        "Suggest a build_order fragment by scanning the project tree",
	Long:         `Glob-scans the project tree for files matching common resource conventions and prints a suggested build_order fragment. Never writes configuration; purely a developer convenience.`,
	RunE:         runDiscover,
	SilenceUsage: true,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	seen := map[string]bool{}
	var found []descriptor.Descriptor

	for _, rule := range discoverRules {
		matches, err := doublestar.FilepathGlob(rule.pattern)
		if err != nil {
			return fmt.Errorf("invalid discovery pattern %q: %w", rule.pattern, err)
		}

		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			found = append(found, descriptor.New(rule.symbol).WithPath(path))
		}
	}

	if len(found) == 0 {
		fmt.Println("no recognizable resources found")
		return nil
	}

	fmt.Println("build_order:")
	for _, d := range found {
		fmt.Printf("  - symbol: %s\n    path: %s\n", d.Symbol, *d.Path)
	}
	return nil
}
