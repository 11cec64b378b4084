package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/modcache"
)

var cacheCmd = &cobra.Command{
	Use:          "cache",
	Short:        "Inspect or clear the module output cache",
	SilenceUsage: true,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Report how many modules are mirrored and the total size of their outputs",
	RunE:         runCacheStats,
	SilenceUsage: true,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove every mirrored module output",
	RunE:         runCacheClear,
	SilenceUsage: true,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCacheForCommand(cmd *cobra.Command) (*config.Config, *modcache.Cache, error) {
	cfg, err := config.NewLoader().LoadForBuild(cmd, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cache, err := modcache.Open(cfg.CacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open module cache: %w", err)
	}

	return cfg, cache, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	_, cache, err := openCacheForCommand(cmd)
	if err != nil {
		return err
	}
	defer cache.Close()

	count, totalSize, err := cache.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	fmt.Printf("%d module(s) mirrored, %d bytes\n", count, totalSize)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	_, cache, err := openCacheForCommand(cmd)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear module cache: %w", err)
	}

	fmt.Println("module cache cleared")
	return nil
}
