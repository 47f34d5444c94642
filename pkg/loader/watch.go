package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle coalesces the burst of events an editor save produces.
const settle = 150 * time.Millisecond

// Watch calls onChange with the path of any watched file that is written,
// created or renamed, until ctx ends. Directories are watched rather than
// files so that editors which replace a file on save keep being seen.
// Empty paths are skipped.
func Watch(ctx context.Context, log *slog.Logger, onChange func(path string), paths ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	wanted := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return err
		}
		if !wanted[abs] {
			if err := w.Add(filepath.Dir(abs)); err != nil {
				w.Close()
				return err
			}
		}
		wanted[abs] = true
	}

	go func() {
		defer w.Close()
		pending := make(map[string]bool)
		timer := time.NewTimer(settle)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !wanted[name] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug("watched file changed", "path", name, "op", event.Op.String())
				pending[name] = true
				timer.Reset(settle)
			case <-timer.C:
				for name := range pending {
					onChange(name)
				}
				clear(pending)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("file watcher", "err", err)
			}
		}
	}()
	return nil
}
