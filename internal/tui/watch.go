package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fileWatcher calls onChange whenever the watched file is written, created,
// renamed over or removed. The parent directory is watched rather than the
// file itself so that atomic replacement by rename is seen.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func watchFile(path string, logger *zap.Logger, onChange func()) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	fw := &fileWatcher{watcher: watcher, logger: logger}
	fw.wg.Add(1)
	go fw.run(filepath.Base(abs), onChange)
	return fw, nil
}

func (fw *fileWatcher) run(name string, onChange func()) {
	defer fw.wg.Done()
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				fw.logger.Debug("task file changed on disk", zap.String("event", event.String()))
				onChange()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (fw *fileWatcher) Close() error {
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}
