package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspath/tspath/internal/testutil"
)

func startWatcher(t *testing.T, cfg Config) (<-chan error, context.CancelFunc) {
	t.Helper()

	w, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return done, cancel
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Process: func(context.Context, []string) error { return nil }})
	assert.Error(t, err)

	_, err = New(Config{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = New(Config{
		Dir:     filepath.Join(t.TempDir(), "missing"),
		Process: func(context.Context, []string) error { return nil },
	})
	assert.Error(t, err)
}

func TestWatcherBatchesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 8)

	_, cancel := startWatcher(t, Config{
		Dir:      dir,
		Filter:   []string{".js"},
		Debounce: 50 * time.Millisecond,
		Logger:   testutil.NewTestLogger(t),
		Process: func(_ context.Context, files []string) error {
			batches <- files
			return nil
		},
	})
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js.map"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.js"), []byte("2"), 0o600))

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !seen[filepath.Join(dir, "a.js")] || !seen[filepath.Join(dir, "b.js")] {
		select {
		case files := <-batches:
			assert.IsIncreasing(t, files)
			for _, f := range files {
				seen[f] = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for a batch")
		}
	}
	assert.False(t, seen[filepath.Join(dir, "a.js.map")], "filtered files never reach a batch")
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 8)

	_, cancel := startWatcher(t, Config{
		Dir:      dir,
		Filter:   []string{".js"},
		Debounce: 50 * time.Millisecond,
		Process: func(_ context.Context, files []string) error {
			batches <- files
			return nil
		},
	})
	defer cancel()

	testutil.WriteFiles(t, dir, map[string]string{"nested/deep/c.js": "3"})
	want := filepath.Join(dir, "nested", "deep", "c.js")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case files := <-batches:
			if assert.NotEmpty(t, files) && contains(files, want) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the nested file")
		}
	}
}

func TestWatcherStopsOnProcessError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")

	done, _ := startWatcher(t, Config{
		Dir:      dir,
		Debounce: 20 * time.Millisecond,
		Process: func(context.Context, []string) error {
			return boom
		},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("1"), 0o600))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	done, cancel := startWatcher(t, Config{
		Dir:     t.TempDir(),
		Process: func(context.Context, []string) error { return nil },
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func contains(files []string, want string) bool {
	for _, f := range files {
		if f == want {
			return true
		}
	}
	return false
}
