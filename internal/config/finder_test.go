package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocalConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	configPath := filepath.Join(root, "a", ".callisto.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("project_root: .\n"), 0o644))

	found := FindLocalConfig(nested, ConfigStem)
	assert.Equal(t, configPath, found)
}

func TestFindLocalConfig_NoneFound(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", FindLocalConfig(root, ConfigStem))
}

func TestFindLocalConfig_DifferentStemIgnoresDefault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".callisto.yml"), []byte("project_root: .\n"), 0o644))

	assert.Equal(t, "", FindLocalConfig(root, "other"))
}
