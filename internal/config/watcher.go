package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk and publishes every
// valid revision on Changes. Revisions that fail to parse or validate are
// logged and dropped; the last good one stays current.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan *Config
	done    chan struct{}

	mu      sync.RWMutex
	current *Config

	closeOnce sync.Once
}

// NewWatcher loads path and starts watching its directory, so editors that
// replace the file instead of writing it in place are still noticed.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fsWatcher,
		changes: make(chan *Config, 1),
		done:    make(chan struct{}),
		current: cfg,
	}
	go w.watch()

	return w, nil
}

// Config returns the last valid configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Changes delivers reloaded configurations. Only the newest pending revision
// is kept if the reader falls behind.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Error("failed to reload config",
			slog.String("path", w.path),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config after reload",
			slog.String("path", w.path),
			slog.String("error", err.Error()),
		)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	slog.Info("config reloaded", slog.String("path", w.path))

	// Replace a revision nobody picked up yet.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
	default:
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

// Relay passes revisions from in to the returned channel after apply has
// adjusted them, e.g. with command-line overrides. Like Changes, it holds at
// most one undelivered revision, the newest. The returned channel is closed
// when in is closed or ctx is done.
func Relay(ctx context.Context, in <-chan *Config, apply func(*Config)) <-chan *Config {
	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-in:
				if !ok {
					return
				}
				cfg, open := newest(in, cfg)
				if apply != nil {
					apply(cfg)
				}
				select {
				case <-out:
				default:
				}
				out <- cfg
				if !open {
					return
				}
			}
		}
	}()
	return out
}

// newest skips to the last revision already waiting on in. open is false
// once in has been closed.
func newest(in <-chan *Config, cfg *Config) (latest *Config, open bool) {
	for {
		select {
		case next, ok := <-in:
			if !ok {
				return cfg, false
			}
			cfg = next
		default:
			return cfg, true
		}
	}
}
