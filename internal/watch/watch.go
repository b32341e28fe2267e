// Package watch observes the partition directory so the run view can
// show partition records appearing and disappearing as the agent
// works.
package watch

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on a partition record.
type Op int

const (
	// Created means a partition record was written.
	Created Op = iota
	// Removed means a partition record was deleted.
	Removed
)

// Event is one observed partition record change.
type Event struct {
	Op   Op
	File string
}

// Watcher forwards partition record changes from the filesystem.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// New starts watching dir for partition record changes. The directory
// must exist.
func New(dir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Events delivers observed changes. The channel closes when the
// watcher is closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if !strings.HasPrefix(name, "partition_") || !strings.HasSuffix(name, ".json") {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.send(Event{Op: Created, File: name})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.send(Event{Op: Removed, File: name})
			}
		case <-w.fs.Errors:
			// Keep watching. Missed events only affect the display.
		}
	}
}

func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
	default:
		// Drop rather than block the fsnotify goroutine.
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
