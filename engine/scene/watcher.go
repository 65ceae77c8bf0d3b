package scene

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher decodes a scene file again every time it changes on disk.
// Decoded files are delivered on Changes and must be applied by the frame loop so a reload never
// interleaves with a publish.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan *File
	errs    chan error
}

// NewWatcher starts watching the directory holding path. Watching the directory rather than the
// file keeps the watch alive across editors that save by rename.
//
// Parameters:
//   - path: the scene file to watch
//
// Returns:
//   - *Watcher: the watcher; call Run to start delivering changes
//   - error: an error if the watch cannot be established
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("scene: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene: watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("scene: watch %s: %w", path, err)
	}
	return &Watcher{
		path:    abs,
		watcher: fw,
		changes: make(chan *File, 1),
		errs:    make(chan error, 1),
	}, nil
}

// Changes delivers the most recent successfully decoded version of the file.
// Only the newest pending version is kept.
func (w *Watcher) Changes() <-chan *File {
	return w.changes
}

// Errors delivers decode and watch failures. Only the newest pending error is kept.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Run processes filesystem events until ctx is done, then closes the underlying watcher.
//
// Parameters:
//   - ctx: cancels the watch loop
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			f, err := LoadFile(w.path)
			if err != nil {
				logger.Warningf("reload of %s failed: %v", w.path, err)
				offer(w.errs, err)
				continue
			}
			logger.Infof("scene file %s changed", w.path)
			offer(w.changes, f)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			offer(w.errs, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// offer replaces any pending value on a single-slot channel with v.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
