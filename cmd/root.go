package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mellonpizza/callisto/internal/logging"
	"github.com/mellonpizza/callisto/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "callisto",
	Short:        "Incremental ROM build engine",
	Long:         `callisto drives a project's external editors and assemblers to insert resources into a ROM, skipping unchanged steps where it can prove doing so is safe.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("project-root", "p", "", "Project root (defaults to the current directory or an ancestor holding a .callisto config file)")
	rootCmd.PersistentFlags().StringP("output-rom", "o", "", "Output ROM path")
	rootCmd.PersistentFlags().String("temporary-folder", "", "Working directory for in-progress builds")
	rootCmd.PersistentFlags().Int("rom-size", 0, "Target ROM size in bytes")
	rootCmd.PersistentFlags().String("levels", "", "Folder containing exported level files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose diagnostic logging")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the module output cache")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(discoverCmd)

	cobra.OnInitialize(func() {
		level := "info"
		if viper.GetBool("verbose") {
			level = "debug"
		}
		logging.Init(level)
	})
}
