// Package watch provides the primitives behind configuration hot reload: a
// FileWatcher that reports changes to a single file, and a Debouncer that
// collapses bursts of change notifications into one callback.
//
// Watchers observe the parent directory and filter by file name, so editors
// that replace files through rename are still seen. A watcher is owned by
// whoever opened it and must be closed explicitly.
package watch
