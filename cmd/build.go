package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mellonpizza/callisto/internal/builder"
	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/insertable"
	"github.com/mellonpizza/callisto/internal/logging"
	"github.com/mellonpizza/callisto/internal/modcache"
)

var buildFull bool
var buildConflictPolicy string

var buildCmd = &cobra.Command{
	Use:          "build",
	Short:        "Build the project's ROM",
	Long:         `Runs a quick build when safe, falling back to a full rebuild when it isn't, or when --full is given.`,
	RunE:         runBuild,
	SilenceUsage: true,
}

func init() {
	buildCmd.Flags().BoolVar(&buildFull, "full", false, "Skip the quick build decision procedure and always perform a full rebuild")
	buildCmd.Flags().StringVar(&buildConflictPolicy, "conflicts", "none", `Write-conflict detection policy for full builds: "none", "hijacks", or "all"`)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadForBuild(cmd, ".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	conflictPolicy, err := builder.ParseConflictPolicy(buildConflictPolicy)
	if err != nil {
		return err
	}

	var modCache *modcache.Cache
	if !cfg.NoCache {
		modCache, err = modcache.Open(cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to open module cache: %w", err)
		}
		defer modCache.Close()
	}

	log := logging.Logger()

	if !buildFull {
		qb := builder.NewQuickBuilder(cfg, insertable.DefaultFactory, modCache, log)
		res, err := qb.Build()
		if err != nil {
			var insertionErr *insertable.InsertionError
			if errors.As(err, &insertionErr) {
				return insertionErr
			}
			return err
		}

		switch res.Kind {
		case builder.Success:
			fmt.Println("build up to date")
			return nil
		case builder.NoWork:
			fmt.Println("nothing to do")
			return nil
		case builder.MustRebuild:
			log.Info("quick build insufficient, falling back to a full rebuild", "reason", res.Reason)
		}
	}

	fb := builder.NewFullBuilder(cfg, insertable.DefaultFactory, modCache, log, conflictPolicy)
	if err := fb.Build(); err != nil {
		var conflictErr *builder.ConflictError
		if errors.As(err, &conflictErr) {
			fmt.Fprintln(os.Stderr, conflictErr)
		}
		return err
	}

	fmt.Println("full build finished")
	return nil
}
