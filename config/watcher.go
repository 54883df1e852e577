package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a configuration file when it changes on disk.
type Watcher struct {
	src      Sources
	apply    func(Config)
	log      *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	doneCh  chan struct{}
}

// NewWatcher creates a watcher over src.File. The apply function receives every
// successfully reloaded configuration, on the watcher goroutine.
func NewWatcher(
	src Sources,
	apply func(Config),
	log *zap.Logger,
) (*Watcher, error) {
	if src.File == "" {
		return nil, fmt.Errorf("watcher needs a config file")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		src:      src,
		apply:    apply,
		log:      log.Named("config-watcher"),
		debounce: 200 * time.Millisecond,
		watcher:  w,
		doneCh:   make(chan struct{}),
	}, nil
}

// WithDebounce sets how long the watcher waits for writes to settle.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Start begins watching. The directory is watched rather than the file so that
// editors that replace the file are followed.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.src.File)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.log.Info("watching config", zap.String("file", w.src.File))

	go w.run(ctx)

	return nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.doneCh

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	target := filepath.Clean(w.src.File)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.log.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.src)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous values",
			zap.Error(err))
		return
	}

	w.log.Info("config reloaded", zap.String("file", w.src.File))
	w.apply(cfg)
}
