// Package config exposes the typed configuration view the build engine
// consumes: project layout paths, the target ROM size, the configured
// build order, and a generic getter over arbitrary user-visible keys
// addressed by dotted paths for ConfigurationDependency comparisons.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mellonpizza/callisto/internal/descriptor"
)

// Default configuration values.
const (
	DefaultStateDir       = ".callisto"
	DefaultTemporaryFolder = ".callisto/temp"
	DefaultCacheDir       = ".callisto-cache"
	DefaultModuleOutputDir = "Modules"
	DefaultCleanupDir     = ".callisto/cleanup"
	DefaultOldSymbolsDir  = ".callisto/old-symbols"
)

// Config holds the configuration options the build engine consumes.
type Config struct {
	// ProjectRoot is the root of the ROM hacking project.
	ProjectRoot string

	// OutputROM is the path the finished ROM is written to.
	OutputROM string

	// TemporaryFolder holds the working ROM and other scratch state for the
	// duration of a build.
	TemporaryFolder string

	// ROMSize is the target ROM size in bytes, or nil if unset.
	ROMSize *int

	// Levels is the folder containing level files, or "" if levels are not
	// configured.
	Levels string

	// BuildOrder is the ordered list of build steps.
	BuildOrder []descriptor.Descriptor

	// ModuleOutputDir is the directory module assembly output files are
	// written under.
	ModuleOutputDir string

	// CleanupDir holds one sidecar file per module, listing addresses to
	// evict before re-assembling it.
	CleanupDir string

	// OldSymbolsDir is resolved from the "old_symbols_dir" setting but is not
	// read by either builder; unchanged module outputs are restored from the
	// module cache under CacheDir instead.
	OldSymbolsDir string

	// StateDir holds the build report and other engine-owned state.
	StateDir string

	// CacheDir holds the module output cache database.
	CacheDir string

	// NoCache disables the module output cache.
	NoCache bool

	// Verbose enables additional diagnostic logging.
	Verbose bool
}

// Load builds a Config from whatever viper currently holds (defaults, config
// files, and bound flags, in that precedence — see Loader).
func Load() (*Config, error) {
	cfg := &Config{
		ProjectRoot:     viper.GetString("project_root"),
		OutputROM:       viper.GetString("output_rom"),
		TemporaryFolder: viper.GetString("temporary_folder"),
		Levels:          viper.GetString("levels"),
		ModuleOutputDir: viper.GetString("module_output_dir"),
		CleanupDir:      viper.GetString("cleanup_dir"),
		OldSymbolsDir:   viper.GetString("old_symbols_dir"),
		StateDir:        viper.GetString("state_dir"),
		CacheDir:        viper.GetString("cache_dir"),
		NoCache:         viper.GetBool("no_cache"),
		Verbose:         viper.GetBool("verbose"),
	}

	if viper.IsSet("rom_size") {
		size := viper.GetInt("rom_size")
		cfg.ROMSize = &size
	}

	order, err := decodeBuildOrder(viper.Get("build_order"))
	if err != nil {
		return nil, err
	}
	cfg.BuildOrder = order

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decodeBuildOrder turns the raw viper value for "build_order" (a list of
// maps with "symbol"/"name"/"path" string keys, as read from YAML/JSON/TOML)
// into descriptors.
func decodeBuildOrder(raw any) ([]descriptor.Descriptor, error) {
	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("build_order must be a list")
	}

	order := make([]descriptor.Descriptor, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("build_order[%d] must be an object", i)
		}

		symbolValue, _ := entry["symbol"].(string)
		symbol := descriptor.Symbol(symbolValue)
		if !symbol.Valid() {
			return nil, fmt.Errorf("build_order[%d] has invalid symbol %q", i, symbolValue)
		}

		d := descriptor.New(symbol)
		if name, ok := entry["name"].(string); ok && name != "" {
			d = d.WithName(name)
		}
		if path, ok := entry["path"].(string); ok && path != "" {
			d = d.WithPath(path)
		}

		order = append(order, d)
	}

	return order, nil
}

// Validate resolves relative paths to absolute ones and checks required
// fields: resolve first, then reject.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root must be set")
	}

	abs, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("invalid project_root: %w", err)
	}
	c.ProjectRoot = abs

	if c.OutputROM == "" {
		return fmt.Errorf("output_rom must be set")
	}
	if abs, err := c.resolve(c.OutputROM); err != nil {
		return fmt.Errorf("invalid output_rom: %w", err)
	} else {
		c.OutputROM = abs
	}

	if c.TemporaryFolder == "" {
		c.TemporaryFolder = DefaultTemporaryFolder
	}
	if abs, err := c.resolve(c.TemporaryFolder); err != nil {
		return fmt.Errorf("invalid temporary_folder: %w", err)
	} else {
		c.TemporaryFolder = abs
	}

	if c.ModuleOutputDir == "" {
		c.ModuleOutputDir = DefaultModuleOutputDir
	}
	if abs, err := c.resolve(c.ModuleOutputDir); err != nil {
		return fmt.Errorf("invalid module_output_dir: %w", err)
	} else {
		c.ModuleOutputDir = abs
	}

	if c.CleanupDir == "" {
		c.CleanupDir = DefaultCleanupDir
	}
	if abs, err := c.resolve(c.CleanupDir); err != nil {
		return fmt.Errorf("invalid cleanup_dir: %w", err)
	} else {
		c.CleanupDir = abs
	}

	if c.OldSymbolsDir == "" {
		c.OldSymbolsDir = DefaultOldSymbolsDir
	}
	if abs, err := c.resolve(c.OldSymbolsDir); err != nil {
		return fmt.Errorf("invalid old_symbols_dir: %w", err)
	} else {
		c.OldSymbolsDir = abs
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if abs, err := c.resolve(c.StateDir); err != nil {
		return fmt.Errorf("invalid state_dir: %w", err)
	} else {
		c.StateDir = abs
	}

	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if abs, err := c.resolve(c.CacheDir); err != nil {
		return fmt.Errorf("invalid cache_dir: %w", err)
	} else {
		c.CacheDir = abs
	}

	if c.Levels != "" {
		if abs, err := c.resolve(c.Levels); err != nil {
			return fmt.Errorf("invalid levels path: %w", err)
		} else {
			c.Levels = abs
		}
	}

	if c.ROMSize != nil && *c.ROMSize <= 0 {
		return fmt.Errorf("rom_size must be positive if set")
	}

	return nil
}

// resolve makes p absolute, relative to ProjectRoot if it is not already
// absolute.
func (c *Config) resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Abs(filepath.Join(c.ProjectRoot, p))
}

// GetByKey returns the canonical stringification of the configuration value
// at the given dotted key path, for comparison against a recorded
// ConfigurationDependency.RecordedValue. Absent keys stringify to "".
func (c *Config) GetByKey(keyPath string) string {
	return CanonicalString(viper.Get(keyPath))
}

// CanonicalString stringifies an arbitrary configuration value the same way
// regardless of which source (flag/file/default) it came from, so recorded
// and observed values are comparable byte-for-byte.
func CanonicalString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
