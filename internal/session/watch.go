package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the session whenever the report file is written or
// created, which covers a rename into place. Bursts of events closer
// together than the configured debounce collapse into one Reload. onReload
// receives every reload result, including failures. Watch returns nil when
// ctx is done.
func (s *Session) Watch(ctx context.Context, onReload func(Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and synthesis runs often replace the
	// file, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.log.WithField("debounce", s.debounce).Info("watching report")

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fire = time.After(s.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("watcher error")
		case <-fire:
			fire = nil
			result, err := s.Reload()
			if err != nil {
				s.log.WithError(err).Warn("reload failed, keeping previous design")
			}
			onReload(result, err)
		}
	}
}
