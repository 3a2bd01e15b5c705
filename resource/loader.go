package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loader reads level files from disk and optionally watches them for changes.
type Loader struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	level   *Level
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewLoader creates a Loader for the given level file path.
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{path: path, logger: logger, stopCh: make(chan struct{})}
}

// Load parses the level file and validates it.
func (l *Loader) Load() (*Level, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", l.path, err)
	}
	lv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", l.path, err)
	}
	l.mu.Lock()
	l.level = lv
	l.mu.Unlock()
	l.logger.Info("level loaded",
		zap.String("name", lv.Name),
		zap.Int("rooms", len(lv.Rooms)),
		zap.Int("doors", len(lv.Doors)),
		zap.Int("props", len(lv.Props)),
		zap.Int("spawns", len(lv.Spawns)))
	return lv, nil
}

// Parse decodes and validates a level from raw JSON.
func Parse(data []byte) (*Level, error) {
	lv := &Level{}
	if err := json.Unmarshal(data, lv); err != nil {
		return nil, err
	}
	if err := validate(lv); err != nil {
		return nil, err
	}
	return lv, nil
}

func validate(lv *Level) error {
	if len(lv.Rooms) == 0 {
		return fmt.Errorf("level has no rooms")
	}
	for i, r := range lv.Rooms {
		if r.Width <= 0 || r.Depth <= 0 {
			return fmt.Errorf("room %d: non-positive size %gx%g", i, r.Width, r.Depth)
		}
	}
	for i, d := range lv.Doors {
		if d.Width <= 0 {
			return fmt.Errorf("door %d: non-positive width %g", i, d.Width)
		}
	}
	for _, s := range lv.Spawns {
		if s.Route != "" && lv.Route(s.Route) == nil {
			return fmt.Errorf("spawn references unknown route %q", s.Route)
		}
	}
	return nil
}

// Level returns the most recently loaded level, or nil.
func (l *Loader) Level() *Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Watch reloads the level whenever the file changes on disk and invokes
// onReload with the fresh level. Parse failures keep the previous level.
// Call Stop to shut the watcher down.
func (l *Loader) Watch(onReload func(*Level)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch level: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch level dir: %w", err)
	}
	l.mu.Lock()
	l.watcher = w
	l.mu.Unlock()

	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				lv, err := l.Load()
				if err != nil {
					l.logger.Warn("level reload failed, keeping previous", zap.Error(err))
					continue
				}
				l.logger.Info("level reloaded", zap.String("name", lv.Name))
				if onReload != nil {
					onReload(lv)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("level watcher error", zap.Error(err))
			case <-l.stopCh:
				return
			}
		}
	}()
	return nil
}

// Stop shuts down the file watcher if one is running.
func (l *Loader) Stop() {
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
}
