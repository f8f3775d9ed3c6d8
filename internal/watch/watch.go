// Package watch re-runs the rewrite whenever the compiler emits new output.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/tspath/tspath/internal/scanner"
)

// DefaultDebounce is used when Config.Debounce is not set.
const DefaultDebounce = 100 * time.Millisecond

// ProcessFunc handles one batch of changed files. Returning an error stops
// the watcher.
type ProcessFunc func(ctx context.Context, files []string) error

// Config holds watcher configuration.
type Config struct {
	// Dir is the directory watched recursively (required).
	Dir string
	// Filter selects the files that trigger a batch; empty matches all.
	Filter []string
	// Debounce is the quiet period collected into a single batch.
	Debounce time.Duration
	// Process is called with every batch (required).
	Process ProcessFunc
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Watcher collects file events under a directory into debounced batches.
type Watcher struct {
	cfg     Config
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// New creates a watcher on cfg.Dir and all its subdirectories.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: directory is required")
	}
	if cfg.Process == nil {
		return nil, errors.New("watch: process function is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, logger: logger, watcher: fw}
	if err := w.addRecursive(cfg.Dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks until ctx is cancelled or a batch fails. Batches are
// processed one at a time, in the order they were collected.
func (w *Watcher) Run(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)
	batches := make(chan []string)

	eg.Go(func() error {
		defer close(batches)
		return w.collect(egctx, batches)
	})

	eg.Go(func() error {
		for files := range batches {
			w.logger.Debug("processing batch", "files", len(files))
			if err := w.cfg.Process(egctx, files); err != nil {
				return err
			}
		}
		return nil
	})

	return eg.Wait()
}

// collect turns raw events into batches of unique paths.
func (w *Watcher) collect(ctx context.Context, batches chan<- []string) error {
	pending := make(map[string]struct{})

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					w.queueDir(event.Name, pending)
					timer.Reset(w.cfg.Debounce)
					continue
				}
			}

			if !scanner.Match(w.cfg.Filter, event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			clear(pending)

			select {
			case batches <- files:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// queueDir adds the matching files already present in a new directory;
// they may have been written before the directory was watched.
func (w *Watcher) queueDir(dir string, pending map[string]struct{}) {
	files, err := scanner.Scan(scanner.OSFS{}, dir, w.cfg.Filter)
	if err != nil {
		w.logger.Warn("failed to scan new directory", "dir", dir, "error", err)
		return
	}
	for _, f := range files {
		pending[f] = struct{}{}
	}
}

// addRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
