package config

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the operator settings file into the Settings store when
// the file changes or the process receives SIGHUP. A reload that fails to
// read or parse keeps the current snapshot.
type Watcher struct {
	path     string
	settings *Settings
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher for the given settings file.
func NewWatcher(path string, settings *Settings, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		settings: settings,
		logger:   logger,
		watcher:  fsWatcher,
	}, nil
}

// Start begins watching for settings changes.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)

	go func() {
		defer w.watcher.Close()

		var debounceTimer *time.Timer

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("settings watcher stopped")
				return

			case sig := <-sigChan:
				w.logger.Info("signal received, reloading settings",
					zap.String("signal", sig.String()))
				w.reload()

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.logger.Debug("settings file changed",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))

				// Debounce: editors fire several events per save.
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, w.reload)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("settings watcher error", zap.Error(err))
			}
		}
	}()

	w.logger.Info("settings watcher started", zap.String("path", w.path))
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Watcher) reload() {
	snap, err := LoadSnapshot(w.path)
	if err != nil {
		w.logger.Error("failed to reload settings, keeping current snapshot",
			zap.Error(err))
		return
	}

	w.settings.Apply(snap)
	w.logger.Info("settings reloaded",
		zap.String("executable", snap.Executable),
		zap.String("config_dir", snap.ConfigDir),
		zap.String("model_override", snap.ModelOverride))
}
