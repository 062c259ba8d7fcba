package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// configWatcher reloads the config file whenever it changes on disk. Only the
// newest successfully parsed config is kept for the game loop to pick up.
type configWatcher struct {
	w       *fsnotify.Watcher
	path    string
	log     *slog.Logger
	updates chan Config
	done    chan struct{}
}

// watchConfig starts watching path. The parent directory is watched so
// editors that save by rename are still seen.
func watchConfig(path string, log *slog.Logger) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}
	cw := &configWatcher{
		w:       w,
		path:    path,
		log:     log,
		updates: make(chan Config, 1),
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (cw *configWatcher) run() {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := loadConfig(cw.path)
			if err != nil {
				cw.log.Warn("config reload failed", "path", cw.path, "err", err)
				continue
			}
			cw.publish(cfg)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config watcher", "err", err)
		}
	}
}

// publish replaces any config the game loop has not consumed yet.
func (cw *configWatcher) publish(cfg Config) {
	for {
		select {
		case cw.updates <- cfg:
			return
		default:
		}
		select {
		case <-cw.updates:
		default:
		}
	}
}

// Poll returns the latest reloaded config, if any, without blocking.
func (cw *configWatcher) Poll() (Config, bool) {
	select {
	case cfg := <-cw.updates:
		return cfg, true
	default:
		return Config{}, false
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (cw *configWatcher) Close() error {
	err := cw.w.Close()
	<-cw.done
	return err
}
