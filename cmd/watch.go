package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mellonpizza/callisto/internal/builder"
	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/insertable"
	"github.com/mellonpizza/callisto/internal/logging"
	"github.com/mellonpizza/callisto/internal/modcache"
	"github.com/mellonpizza/callisto/internal/watch"
)

var watchConflictPolicy string

var watchCmd = &cobra.Command{
	Use:          "watch",
	Short:        "Rebuild the project whenever its files change",
	Long:         `Watches the project root and runs the same quick/full build fallback as "callisto build" after every debounced burst of filesystem changes, until interrupted.`,
	RunE:         runWatch,
	SilenceUsage: true,
}

func init() {
	watchCmd.Flags().StringVar(&watchConflictPolicy, "conflicts", "none", `Write-conflict detection policy for full builds: "none", "hijacks", or "all"`)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadForBuild(cmd, ".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	conflictPolicy, err := builder.ParseConflictPolicy(watchConflictPolicy)
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

	runOnce := func() {
		qb := builder.NewQuickBuilder(cfg, insertable.DefaultFactory, modCache, log)
		res, err := qb.Build()
		if err != nil {
			log.Error("build failed", "error", err)
			return
		}

		switch res.Kind {
		case builder.Success:
			log.Info("build up to date")
			return
		case builder.NoWork:
			log.Info("nothing to do")
			return
		case builder.MustRebuild:
			log.Info("quick build insufficient, falling back to a full rebuild", "reason", res.Reason)
		}

		fb := builder.NewFullBuilder(cfg, insertable.DefaultFactory, modCache, log, conflictPolicy)
		if err := fb.Build(); err != nil {
			var conflictErr *builder.ConflictError
			if errors.As(err, &conflictErr) {
				log.Error("write conflicts detected", "error", conflictErr)
				return
			}
			log.Error("full build failed", "error", err)
			return
		}
		log.Info("full build finished")
	}

	w, err := watch.New(cfg.ProjectRoot, 0, runOnce, log)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		<-sig
		close(stop)
	}()

	log.Info("watching for changes", "root", cfg.ProjectRoot)
	return w.Run(stop)
}
