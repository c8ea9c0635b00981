package mockapi

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// SeedWatcher reloads a Store whenever its seed file is written.
type SeedWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	store    *Store
	onReload func(count int, err error)
}

// NewSeedWatcher watches filePath. onReload may be nil.
func NewSeedWatcher(filePath string, store *Store, onReload func(count int, err error)) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory too: editors often replace files instead of writing them
	dir := filepath.Dir(filePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &SeedWatcher{
		watcher:  watcher,
		filePath: filePath,
		store:    store,
		onReload: onReload,
	}, nil
}

// Start blocks until ctx is done or the watcher is closed.
func (sw *SeedWatcher) Start(ctx context.Context) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(sw.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, sw.reload)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("seed watcher error", slog.String("error", err.Error()))
		}
	}
}

func (sw *SeedWatcher) reload() {
	rows, err := LoadSeed(sw.filePath)
	if err != nil {
		logger.Error("failed to reload seed", slog.String("file", sw.filePath), slog.String("error", err.Error()))
	} else {
		sw.store.Reset(rows)
		logger.Info("reloaded seed", slog.String("file", sw.filePath), slog.Int("count", len(rows)))
	}
	if sw.onReload != nil {
		sw.onReload(len(rows), err)
	}
}

// Close stops watching.
func (sw *SeedWatcher) Close() error {
	return sw.watcher.Close()
}
