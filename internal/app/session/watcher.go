package session

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

// Watch emits the freshly loaded session whenever another process rewrites or
// removes the session file, nil meaning "logged out". This mirrors the
// cross-tab storage signal: it keeps header-style displays in sync but is
// never used to re-authorize an already-resolved route.
//
// The channel closes when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan *models.Session, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperrors.NewCustomError(err, "failed to create session watcher")
	}

	// Watch the directory, not the file: saves go through rename, and some
	// platforms drop a watch on the replaced inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, apperrors.NewCustomError(err, "failed to watch session directory")
	}

	changes := make(chan *models.Session, 1)

	go func() {
		defer watcher.Close()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}

				select {
				case changes <- s.Current():
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn().Err(err).Msg("Session watcher error")
			}
		}
	}()

	return changes, nil
}
