package rom

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHeader(t *testing.T) {
	assert.Equal(t, 0, DetectHeader(make([]byte, 0x100000)))
	assert.Equal(t, HeaderSize, DetectHeader(make([]byte, 0x100000+HeaderSize)))
}

func TestCopyAndMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.smc")
	require.NoError(t, os.WriteFile(src, []byte("rom-bytes"), 0o644))

	dst := filepath.Join(dir, "nested", "dst.smc")
	require.NoError(t, Copy(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "rom-bytes", string(data))

	moved := filepath.Join(dir, "moved.smc")
	require.NoError(t, Move(dst, moved))
	assert.NoFileExists(t, dst)
	data, err = os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "rom-bytes", string(data))
}

func TestExpandToSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rom.smc")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	require.NoError(t, ExpandToSize(path, 200))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 200)
	assert.True(t, bytes.Equal(data[100:], bytes.Repeat([]byte{0xFF}, 100)))
}

func TestExpandToSize_NoOpWhenAlreadyLargeEnough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rom.smc")
	original := make([]byte, 300)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	require.NoError(t, ExpandToSize(path, 200))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 300)
}

func TestMarkerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rom.smc")
	require.NoError(t, os.WriteFile(path, make([]byte, 0x100000), 0o644))

	require.NoError(t, WriteMarker(path, 3))

	version, ok, err := ReadMarker(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, version)
}

func TestReadMarker_AbsentOnFreshRom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rom.smc")
	require.NoError(t, os.WriteFile(path, make([]byte, 0x100000), 0o644))

	_, ok, err := ReadMarker(path)
	require.NoError(t, err)
	assert.False(t, ok)
}
