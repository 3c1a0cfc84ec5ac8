package watch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher is an open watch on one file.
type Watcher interface {
	// Close stops the watch and releases its OS resources. It is safe to
	// call more than once.
	Close() error
}

// Factory opens a watcher on path. onChange is called for every relevant
// filesystem event on the watcher goroutine. onError is called for every
// watcher error on a goroutine of its own, so it may close the watcher.
type Factory func(path string, onChange func(), onError func(error)) (Watcher, error)

// FSNotify returns a Factory backed by fsnotify.
func FSNotify(logger *slog.Logger) Factory {
	return func(path string, onChange func(), onError func(error)) (Watcher, error) {
		return NewFileWatcher(path, onChange, onError, logger)
	}
}

// FileWatcher watches a single file through its parent directory.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	onChange func()
	onError  func(error)

	closeOnce sync.Once
	closeErr  error
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewFileWatcher starts watching path. The file must exist when the watch is
// opened.
func NewFileWatcher(path string, onChange func(), onError func(error), logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %q: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to watch %q: is a directory", abs)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", abs, err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		logger:   logger.With("component", "watch", "path", abs),
		path:     abs,
		onChange: onChange,
		onError:  onError,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go fw.loop()

	fw.logger.Debug("file watcher started")
	return fw, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

func (fw *FileWatcher) loop() {
	defer close(fw.doneCh)

	for {
		select {
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}
			fw.logger.Debug("file event detected", "op", event.Op.String())
			if fw.onChange != nil {
				fw.onChange()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Debug("file watcher error", "error", err)
			if fw.onError != nil {
				go fw.onError(err)
			}
		}
	}
}

// shouldProcessEvent keeps content changes to the watched file.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// Close implements Watcher.
func (fw *FileWatcher) Close() error {
	fw.closeOnce.Do(func() {
		close(fw.stopCh)
		if err := fw.watcher.Close(); err != nil {
			fw.closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
		<-fw.doneCh
		fw.logger.Debug("file watcher stopped")
	})
	return fw.closeErr
}
