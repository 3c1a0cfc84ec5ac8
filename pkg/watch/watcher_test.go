package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFileWatcher_MissingFile(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing.json"), func() {}, nil, nil)
	if err == nil {
		t.Fatal("NewFileWatcher() error = nil for a missing file")
	}
}

func TestNewFileWatcher_Directory(t *testing.T) {
	if _, err := NewFileWatcher(t.TempDir(), func() {}, nil, nil); err == nil {
		t.Fatal("NewFileWatcher() error = nil for a directory")
	}
}

func TestFileWatcher_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan struct{}, 16)
	fw, err := NewFileWatcher(path, func() { changes <- struct{}{} }, nil, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer fw.Close()

	if err := os.WriteFile(other, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
		t.Fatal("change reported for a sibling file")
	case <-time.After(100 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte(`{"a":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported after writing the file")
	}
}

func TestFileWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := FSNotify(nil)(path, func() {}, func(error) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileWatcher_CloseFromErrorCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var fw *FileWatcher
	closed := make(chan error, 1)
	fw, err := NewFileWatcher(path, func() {}, func(error) { closed <- fw.Close() }, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	fw.watcher.Errors <- errors.New("queue overflow")

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close() from the error callback did not return")
	}
}
