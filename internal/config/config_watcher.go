package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const watchDebounceInterval = 300 * time.Millisecond

// Watcher reloads the config file on change and hands the validated result
// to the registered callback. Reload failures keep the previous config.
type Watcher struct {
	path     string
	onChange func(*Config)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
}

// NewWatcher watches path. onChange runs on the watcher goroutine after each
// successful reload.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files, which drops a watch
	// registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsw,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounceInterval, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.WithError(err).Warn("config reload failed, keeping previous configuration")
		return
	}
	log.WithField("path", w.path).Info("configuration reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
