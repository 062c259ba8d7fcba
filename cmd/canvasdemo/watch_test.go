package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[demo]\nsprites = 5\n"), 0o644))

	cw, err := watchConfig(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer cw.Close()

	_, ok := cw.Poll()
	assert.False(t, ok, "no update before the file changes")

	replaceFile(t, path, "[demo]\nsprites = 9\nshow_hud = false\n")

	var cfg Config
	require.Eventually(t, func() bool {
		var got bool
		cfg, got = cw.Poll()
		return got && cfg.Demo.Sprites == 9
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, cfg.Demo.ShowHUD)
}

func TestWatchConfigIgnoresBadWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[demo]\n"), 0o644))

	cw, err := watchConfig(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer cw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644))
	replaceFile(t, path, "[window]\nwidth = 0\n")

	time.Sleep(200 * time.Millisecond)
	_, ok := cw.Poll()
	assert.False(t, ok, "invalid config and unrelated files are not published")
}

func TestWatchConfigMissingDir(t *testing.T) {
	_, err := watchConfig(filepath.Join(t.TempDir(), "nope", "demo.toml"), slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

// replaceFile swaps in new contents with a rename so the watcher never reads
// a half-written file.
func replaceFile(t *testing.T, path, data string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(data), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}
