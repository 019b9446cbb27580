package seed

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a seed-data directory and invokes onChange whenever a
// fixture file is written, for the CLI's --watch flag.
type Watcher struct {
	fsw *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to begin dispatching events.
func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fixture watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{fsw: fsw}, nil
}

// Run blocks, invoking onChange(path) for every write/create event, and
// onError(err) for watcher errors, until Close is called.
func (w *Watcher) Run(onChange func(path string), onError func(err error)) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				onChange(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			onError(err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
