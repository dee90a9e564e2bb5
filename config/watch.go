package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/credwatch/observe"
)

// Watch monitors path and calls onChange with each successfully reloaded
// Config until ctx is cancelled.
//
// The parent directory is watched so editors that save by rename are seen.
// A reload that fails to parse or validate is logged and skipped; the
// previous config stays in effect.
func Watch(ctx context.Context, path string, logger observe.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = observe.NopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info(ctx, "config: watching for changes", observe.F("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.Error(ctx, "config: reload failed, keeping previous config",
					observe.F("path", path), observe.F("error", err.Error()))
				continue
			}

			logger.Info(ctx, "config: reloaded", observe.F("path", path))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(ctx, "config: watcher error", observe.F("error", err.Error()))
		}
	}
}
