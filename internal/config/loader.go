package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources: defaults,
// a global per-user file, a local project file discovered by walking up
// from the working directory, and finally bound command flags.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForBuild loads configuration for a build-family command (build,
// watch). dir is the directory to start the local config search from,
// typically the current working directory.
func (l *Loader) LoadForBuild(cmd *cobra.Command, dir string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(dir)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper.
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("temporary_folder", DefaultTemporaryFolder)
	viper.SetDefault("module_output_dir", DefaultModuleOutputDir)
	viper.SetDefault("cleanup_dir", DefaultCleanupDir)
	viper.SetDefault("old_symbols_dir", DefaultOldSymbolsDir)
	viper.SetDefault("state_dir", DefaultStateDir)
	viper.SetDefault("cache_dir", DefaultCacheDir)
	viper.SetDefault("no_cache", false)
	viper.SetDefault("verbose", false)
}

// loadGlobalConfig loads global configuration from the user's config
// directory (e.g. $XDG_CONFIG_HOME/callisto on Linux).
func (l *Loader) loadGlobalConfig() {
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" {
		return
	}

	globalDir := filepath.Join(configHome, "callisto")
	for _, ext := range ConfigExtensions {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration by walking up from dir.
func (l *Loader) loadLocalConfig(dir string) {
	if dir == "" {
		return
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return // silently ignore, config.Load() will handle validation
	}

	localPath := FindLocalConfig(absDir, ConfigStem)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()

		if !viper.IsSet("project_root") {
			viper.Set("project_root", filepath.Dir(localPath))
		}
	} else if !viper.IsSet("project_root") {
		viper.Set("project_root", absDir)
	}
}

// bindCommandFlags binds command flags to viper.
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for _, flag := range []struct{ name, key string }{
		{"project-root", "project_root"},
		{"output-rom", "output_rom"},
		{"temporary-folder", "temporary_folder"},
		{"rom-size", "rom_size"},
		{"levels", "levels"},
		{"verbose", "verbose"},
		{"no-cache", "no_cache"},
	} {
		if f := cmd.Flags().Lookup(flag.name); f != nil {
			_ = viper.BindPFlag(flag.key, f)
		}
	}
}
