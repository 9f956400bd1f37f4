package catalog

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

type ReloadHandler func(path string)

// Watcher watches one catalog file and calls the handler after edits
// settle. It watches the containing directory because editors tend to
// replace files instead of writing in place.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	handler ReloadHandler
	done    chan struct{}
}

func NewWatcher(path string, handler ReloadHandler) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	w := &Watcher{
		watcher: watcher,
		path:    path,
		handler: handler,
		done:    make(chan struct{}),
	}

	go w.watch()

	return w, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) watch() {
	debounce := time.NewTimer(0)
	<-debounce.C // Drain initial timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if w.shouldHandle(event) {
				// Debounce rapid changes
				debounce.Reset(500 * time.Millisecond)
				go w.waitAndHandle(debounce, event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("catalog watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) shouldHandle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	return filepath.Base(event.Name) == filepath.Base(w.path)
}

func (w *Watcher) waitAndHandle(timer *time.Timer, path string) {
	<-timer.C
	w.handler(path)
}
