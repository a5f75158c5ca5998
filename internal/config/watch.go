package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to game definition files.
type Watcher struct {
	w        *fsnotify.Watcher
	onChange func(path string)
	done     chan struct{}
}

// NewWatcher watches dir and calls onChange from its own goroutine for every
// write, create, remove or rename inside it.
func NewWatcher(dir string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{w: fw, onChange: onChange, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

// WatchLoader invalidates l whenever its games directory changes.
func WatchLoader(l *Loader) (*Watcher, error) {
	return NewWatcher(l.Paths().GamesDir(), func(path string) {
		log.Printf("config: %s changed, reloading", path)
		l.Invalidate()
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 && w.onChange != nil {
				w.onChange(ev.Name)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
