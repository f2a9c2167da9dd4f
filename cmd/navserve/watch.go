package main

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fixtureWatcher rebuilds the hub's grid when the fixture file changes on
// disk. It watches the containing directory because editors replace files on
// save instead of writing in place.
type fixtureWatcher struct {
	watcher *fsnotify.Watcher
	hub     *Hub
	target  string
	closeCh chan struct{}
	once    sync.Once
}

func watchFixture(hub *Hub, path string) (*fixtureWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}
	fw := &fixtureWatcher{
		watcher: w,
		hub:     hub,
		target:  filepath.Base(path),
		closeCh: make(chan struct{}),
	}
	go fw.run()
	return fw, nil
}

func (fw *fixtureWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.closeCh)
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fixtureWatcher) run() {
	var lastReload time.Time
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != fw.target {
				continue
			}
			now := time.Now()
			if now.Sub(lastReload) < 100*time.Millisecond {
				continue
			}
			lastReload = now
			if err := fw.hub.Reload(); err != nil {
				log.Printf("fixture reload failed, keeping previous grid: %v", err)
				continue
			}
			log.Printf("fixture %s reloaded", fw.target)
			fw.hub.broadcast(fw.hub.gridSnapshot())
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("fixture watch error: %v", err)
		case <-fw.closeCh:
			return
		}
	}
}
