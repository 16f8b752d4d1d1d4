// Package reload detects modifications of the configuration file so
// the daemon can pick up poll-interval changes without restarting.
package reload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher keeps track of the configuration file and detects
// modifications by comparing stat snapshots.
type Watcher struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewWatcher builds a watcher for the given file.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	w := &Watcher{path: abs}
	if err := w.Update(); err != nil {
		return nil, err
	}
	return w, nil
}

// Update re-snapshots the watched file. Call it after a change has
// been handled so the same modification is not reported again.
func (w *Watcher) Update() error {
	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", w.path)
	}
	w.mu.Lock()
	w.state = fileState{modTime: info.ModTime(), size: info.Size()}
	w.mu.Unlock()
	return nil
}

// Changed reports whether the file was modified since the last
// snapshot. A vanished file counts as changed.
func (w *Watcher) Changed() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("config path %s is a directory", w.path)
	}
	return info.ModTime().After(w.state.modTime) || info.Size() != w.state.size, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}
