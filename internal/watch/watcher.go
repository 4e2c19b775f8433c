// Package watch re-runs generation when its input files change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/logfields"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a set of files and calls a handler after they change.
type Watcher struct {
	files    map[string]struct{}
	dirs     map[string]struct{}
	debounce time.Duration
	onChange func(ctx context.Context) error
}

// New returns a watcher for paths. Directories are watched rather than the
// files themselves so that atomic rename-on-save is picked up.
func New(paths []string, debounce time.Duration, onChange func(ctx context.Context) error) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.ValidationError("watch requires at least one path").Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		dirs:     make(map[string]struct{}, len(paths)),
		debounce: debounce,
		onChange: onChange,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.FileSystemError("resolve watched path").WithCause(err).
				WithContext("path", p).
				Build()
		}
		w.files[abs] = struct{}{}
		w.dirs[filepath.Dir(abs)] = struct{}{}
	}
	return w, nil
}

// Run blocks until ctx is done. Handler errors are logged; they do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.FileSystemError("create file watcher").WithCause(err).Build()
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			slog.Warn("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	for dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return errors.FileSystemError("watch directory").WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	slog.Info("Watching for changes", logfields.Count(len(w.files)))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				slog.Error("Regeneration failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
