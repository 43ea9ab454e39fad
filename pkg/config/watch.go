package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/logger"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange whenever filePath is written, created or renamed into
// place, until ctx is cancelled. The parent directory is watched so that
// editors replacing the file atomically are noticed. Bursts of events within
// debounce are delivered as one call.
func Watch(ctx context.Context, filePath string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to resolve watched file").WithDetail("file", filePath)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create file watcher")
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to watch directory").WithDetail("dir", filepath.Dir(abs))
	}

	log := logger.WithContext(ctx).With(zap.String("component", "config_watcher"), zap.String("file", abs))
	log.Info("watching file for changes")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("file change detected", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			onChange()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}
