package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tochemey/goakt/v3/log"
)

// DebounceWindow is how long the watcher waits for more writes before
// reloading. Editors often save a file in several events.
const DebounceWindow = 100 * time.Millisecond

// Watch reloads path whenever it changes and sends every config that
// passes validation on out. Invalid files are logged and skipped, the
// previous config stays in effect. The parent directory is watched so
// that rename-on-save editors are followed. Watching stops when ctx is
// done; out is never closed.
func Watch(ctx context.Context, path string, logger log.Logger, out chan<- *Config) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	go watchLoop(ctx, watcher, abs, logger, out)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, logger log.Logger, out chan<- *Config) {
	defer watcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(DebounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(DebounceWindow)
			}

		case <-timerC:
			timer, timerC = nil, nil
			cfg, err := LoadConfig(path)
			if err != nil {
				logger.Errorf("config reload rejected: %v", err)
				continue
			}
			logger.Infof("config reloaded from %s", path)
			select {
			case out <- cfg:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher: %v", err)
		}
	}
}
