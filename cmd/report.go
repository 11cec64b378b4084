package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mellonpizza/callisto/internal/diffutil"
	"github.com/mellonpizza/callisto/internal/report"
)

var reportCmd = &cobra.Command{
	Use:          "report",
	Short:        "Inspect build reports",
	SilenceUsage: true,
}

var reportDiffCmd = &cobra.Command{
	Use:          "diff <old.json> <new.json>",
	Short:        "Show what changed between two build reports",
	Args:         cobra.ExactArgs(2),
	RunE:         runReportDiff,
	SilenceUsage: true,
}

func init() {
	reportCmd.AddCommand(reportDiffCmd)
}

func runReportDiff(cmd *cobra.Command, args []string) error {
	oldPath, newPath := args[0], args[1]

	oldReport, err := report.Load(oldPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", oldPath, err)
	}
	newReport, err := report.Load(newPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", newPath, err)
	}

	summary := diffutil.Summarize(oldReport, newReport)
	printSummary(summary)

	body, err := diffutil.Unified(oldPath, oldReport, newPath, newReport, diffutil.Options{})
	if err != nil {
		return fmt.Errorf("failed to generate diff: %w", err)
	}
	if body != "" {
		fmt.Println()
		fmt.Print(body)
	}

	return nil
}

func printSummary(s diffutil.Summary) {
	if s.BuildOrderChanged {
		fmt.Println("build order changed")
	}
	if s.ROMSizeChanged {
		fmt.Println("rom size changed")
	}
	for _, l := range s.InsertedLevelsAdded {
		fmt.Printf("level %d inserted\n", l)
	}
	for _, l := range s.InsertedLevelsRemoved {
		fmt.Printf("level %d removed\n", l)
	}
	for _, m := range s.ModulesChanged {
		fmt.Printf("module %s changed\n", m)
	}
}
