package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper() {
	viper.Reset()
}

func TestLoad_RequiresProjectRoot(t *testing.T) {
	resetViper()
	viper.Set("output_rom", "out.smc")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresOutputROM(t *testing.T) {
	resetViper()
	viper.Set("project_root", t.TempDir())
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AppliesDefaultsAndResolvesRelativePaths(t *testing.T) {
	resetViper()
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "out.smc"), cfg.OutputROM)
	assert.Equal(t, filepath.Join(root, DefaultTemporaryFolder), cfg.TemporaryFolder)
	assert.Equal(t, filepath.Join(root, DefaultModuleOutputDir), cfg.ModuleOutputDir)
	assert.Nil(t, cfg.ROMSize)
}

func TestLoad_RomSize(t *testing.T) {
	resetViper()
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")
	viper.Set("rom_size", 4194304)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.ROMSize)
	assert.Equal(t, 4194304, *cfg.ROMSize)
}

func TestLoad_RejectsNonPositiveRomSize(t *testing.T) {
	resetViper()
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")
	viper.Set("rom_size", 0)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BuildOrder(t *testing.T) {
	resetViper()
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")
	viper.Set("build_order", []any{
		map[string]any{"symbol": "GRAPHICS"},
		map[string]any{"symbol": "PATCH", "name": "a.asm"},
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.BuildOrder, 2)
	assert.Equal(t, "GRAPHICS", string(cfg.BuildOrder[0].Symbol))
	assert.Equal(t, "PATCH", string(cfg.BuildOrder[1].Symbol))
	require.NotNil(t, cfg.BuildOrder[1].Name)
	assert.Equal(t, "a.asm", *cfg.BuildOrder[1].Name)
}

func TestLoad_BuildOrder_RejectsUnknownSymbol(t *testing.T) {
	resetViper()
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")
	viper.Set("build_order", []any{
		map[string]any{"symbol": "NOT_REAL"},
	})

	_, err := Load()
	assert.Error(t, err)
}

func TestGetByKey(t *testing.T) {
	resetViper()
	viper.Set("some.nested.key", "value")
	viper.Set("flag_on", true)
	viper.Set("flag_off", false)

	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("output_rom", "out.smc")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "value", cfg.GetByKey("some.nested.key"))
	assert.Equal(t, "true", cfg.GetByKey("flag_on"))
	assert.Equal(t, "false", cfg.GetByKey("flag_off"))
	assert.Equal(t, "", cfg.GetByKey("does.not.exist"))
}
