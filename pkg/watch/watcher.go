// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

type Config struct {
	Paths    []string
	Debounce time.Duration
}

// Watcher watches the directories of its paths and reports writes to
// the paths themselves.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}

	mu    sync.Mutex
	paths map[string]struct{}
	dirs  map[string]struct{}
}

func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("Creating file watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
		paths:     map[string]struct{}{},
		dirs:      map[string]struct{}{},
	}

	err = w.SetPaths(cfg.Paths)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetPaths replaces the watched set, e.g. after an expansion loaded a
// different set of templates.
func (w *Watcher) SetPaths(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths = map[string]struct{}{}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("Resolving watched path '%s': %w", path, err)
		}
		w.paths[absPath] = struct{}{}

		dir := filepath.Dir(absPath)
		if _, found := w.dirs[dir]; found {
			continue
		}
		err = w.fsWatcher.Add(dir)
		if err != nil {
			return fmt.Errorf("Watching directory '%s': %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

// Start returns a channel that receives once per debounced burst of
// changes.
func (w *Watcher) Start() <-chan struct{} {
	go w.loop()
	return w.onChange
}

func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	// editors often replace files via rename + create
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	absPath, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	_, found := w.paths[absPath]
	return found
}
