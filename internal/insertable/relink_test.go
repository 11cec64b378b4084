package insertable

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/descriptor"
)

func TestRelinkProjectGraphics_RunsExportPerConfiguredSymbol(t *testing.T) {
	viper.Reset()
	viper.Set("tools.lunar_magic", "/tools/lm.exe")

	root := t.TempDir()
	cfg := &config.Config{
		ProjectRoot: root,
		BuildOrder: []descriptor.Descriptor{
			descriptor.New(descriptor.Graphics).WithPath("Graphics"),
			descriptor.New(descriptor.ExGraphics).WithPath("ExGraphics"),
			descriptor.New(descriptor.Patch).WithPath("a.asm"),
		},
	}

	var calls [][]string
	execFn := func(name string, args ...string) Commander {
		calls = append(calls, append([]string{name}, args...))
		return &mockCommander{runFunc: func() error { return nil }}
	}

	err := relinkProjectGraphics(cfg, filepath.Join(root, "out.smc"), execFn)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"/tools/lm.exe", "-ExportGFX", filepath.Join(root, "out.smc"), filepath.Join(root, "Graphics")}, calls[0])
	assert.Equal(t, []string{"/tools/lm.exe", "-ExportExGFX", filepath.Join(root, "out.smc"), filepath.Join(root, "ExGraphics")}, calls[1])
}

func TestRelinkProjectGraphics_NoopWithoutGraphicsSteps(t *testing.T) {
	viper.Reset()
	viper.Set("tools.asar", "/tools/asar.exe")

	cfg := &config.Config{
		ProjectRoot: t.TempDir(),
		BuildOrder:  []descriptor.Descriptor{descriptor.New(descriptor.Patch).WithPath("a.asm")},
	}

	called := false
	execFn := func(name string, args ...string) Commander {
		called = true
		return &mockCommander{runFunc: func() error { return nil }}
	}

	err := relinkProjectGraphics(cfg, "out.smc", execFn)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRelinkProjectGraphics_NonZeroExitIsInsertionError(t *testing.T) {
	viper.Reset()
	viper.Set("tools.lunar_magic", "/tools/lm.exe")

	cfg := &config.Config{
		ProjectRoot: t.TempDir(),
		BuildOrder:  []descriptor.Descriptor{descriptor.New(descriptor.Graphics).WithPath("Graphics")},
	}

	execFn := func(name string, args ...string) Commander {
		return &mockCommander{runFunc: func() error { return &exec.ExitError{} }}
	}

	err := relinkProjectGraphics(cfg, "out.smc", execFn)
	assert.Error(t, err)
}
