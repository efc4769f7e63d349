package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

var errWatchNeedsConfig = errors.New("--watch requires --config")

// watchConfig calls run each time path is written, until ctx is done.
// Bursts of events within watchDebounce collapse into one call. The
// parent directory is watched so editors that replace the file on save
// are still seen.
func watchConfig(ctx context.Context, path string, run func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	slog.Info("watching config", slog.String("path", abs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.Any("err", err))
		case <-pending:
			pending = nil
			if err := run(); err != nil {
				slog.Error("re-run failed", slog.Any("err", err))
			}
		}
	}
}
