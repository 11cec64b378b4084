package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".callisto", "temp"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Graphics"), 0o755))

	w, err := New(root, 0, func() {}, nil)
	require.NoError(t, err)
	defer w.Close()

	watched := w.fw.WatchList()
	assert.Contains(t, watched, filepath.Join(root, "Graphics"))
	assert.NotContains(t, watched, filepath.Join(root, ".callisto"))
	assert.NotContains(t, watched, filepath.Join(root, ".callisto", "temp"))
}

func TestWatcher_ShouldIgnore(t *testing.T) {
	root := t.TempDir()
	w := &Watcher{Root: root}

	assert.True(t, w.shouldIgnore(filepath.Join(root, ".callisto", "build-report.json")))
	assert.True(t, w.shouldIgnore(filepath.Join(root, ".git", "HEAD")))
	assert.False(t, w.shouldIgnore(filepath.Join(root, "Graphics", "title.bin")))
}

func TestWatcher_DebouncesBurstsIntoOneBuild(t *testing.T) {
	root := t.TempDir()
	builds := 0

	w, err := New(root, 20*time.Millisecond, func() { builds++ }, nil)
	require.NoError(t, err)
	defer w.Close()

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(stop) }()

	path := filepath.Join(root, "a.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	close(stop)
	require.NoError(t, <-done)

	assert.Equal(t, 1, builds)
}
