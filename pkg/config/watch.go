package config

import (
	"context"
	"errors"
	"time"

	"mercator-hq/confkit/pkg/tree"
	"mercator-hq/confkit/pkg/watch"
)

// Reload re-runs the pipeline. When the result differs from the current
// configuration it is swapped in and an EventChange is emitted; an
// EventReload follows every successful run. On failure an EventError is
// emitted, the error is returned and the current configuration is kept.
func (c *Config) Reload(ctx context.Context) error {
	events, err := c.reload(ctx)
	for _, ev := range events {
		c.emit(ev)
	}
	return err
}

// reload runs the pipeline under runMu and returns the events to emit once
// the lock is released.
func (c *Config) reload(ctx context.Context) ([]Event, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	old := c.state.Load()
	start := time.Now()
	next, err := c.run(ctx)
	c.recordLoad(next, time.Since(start), err)

	profile := c.opts.Profile
	if old != nil {
		profile = old.context.Profile
	}
	if err != nil {
		c.logger.Warn("configuration reload failed", "error", err)
		if c.opts.Metrics != nil {
			c.opts.Metrics.RecordReload(profile, 0, err)
		}
		return []Event{{Type: EventError, Err: err}}, err
	}

	var prev tree.Frozen
	if old != nil {
		prev = old.data
	}
	changed := prev.Diff(next.data)
	if old == nil || len(changed) > 0 {
		c.state.Store(next)
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordReload(next.context.Profile, len(changed), nil)
	}

	var events []Event
	if len(changed) > 0 {
		c.logger.Info("configuration changed", "paths", len(changed))
		events = append(events, Event{Type: EventChange, NewData: next.data, OldData: prev, ChangedPaths: changed})
	} else {
		c.logger.Debug("configuration reloaded without changes")
	}
	events = append(events, Event{Type: EventReload, NewData: next.data, OldData: prev, ChangedPaths: changed})
	return events, nil
}

// Watch starts watching every file source of the active profile. Files
// that cannot be watched are skipped. Cancelling ctx stops watching.
// Calling Watch while already watching does nothing.
func (c *Config) Watch(ctx context.Context, opts WatchOptions) error {
	c.watchMu.Lock()
	if c.watching {
		c.watchMu.Unlock()
		return nil
	}

	lc, sources, err := c.activeContext()
	if err != nil {
		c.watchMu.Unlock()
		return err
	}

	interval := opts.Debounce
	if interval <= 0 {
		interval = DefaultDebounce
	}
	var debouncer *watch.Debouncer
	if c.opts.AfterFunc != nil {
		debouncer = watch.NewDebouncerWithTimer(interval, c.opts.AfterFunc)
	} else {
		debouncer = watch.NewDebouncer(interval)
	}
	factory := c.opts.WatcherFactory
	if factory == nil {
		factory = watch.FSNotify(c.logger)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	var watchers []watch.Watcher
	for _, src := range sources {
		if !src.IsFile() {
			continue
		}
		path, err := src.AbsPath(lc)
		if err != nil {
			c.logger.Debug("skipping unwatchable source", "path", src.Path, "error", err)
			continue
		}
		w, err := factory(path,
			func() {
				debouncer.Trigger(func() { _ = c.Reload(watchCtx) })
			},
			func(err error) {
				c.emit(Event{Type: EventError, Err: err, Source: path})
			},
		)
		if err != nil {
			c.logger.Debug("skipping unwatchable source", "path", path, "error", err)
			continue
		}
		watchers = append(watchers, w)
	}

	c.watching = true
	c.watchGen++
	gen := c.watchGen
	c.watchers = watchers
	c.debouncer = debouncer
	c.cancel = cancel
	c.watchMu.Unlock()

	if c.opts.Metrics != nil {
		c.opts.Metrics.SetWatchedFiles(len(watchers))
	}
	c.logger.Info("watching configuration", "files", len(watchers), "debounce", interval)

	go func() {
		<-watchCtx.Done()
		c.stopWatching(gen)
	}()

	if opts.Immediate {
		_ = c.Reload(watchCtx)
	}
	return nil
}

// Unwatch closes every watcher and drops any pending reload. Calling it
// while not watching does nothing.
func (c *Config) Unwatch() {
	c.watchMu.Lock()
	gen := c.watchGen
	c.watchMu.Unlock()
	c.stopWatching(gen)
}

// stopWatching ends watch session gen. Sessions that already ended, or were
// replaced by a newer one, are left alone.
func (c *Config) stopWatching(gen uint64) {
	c.watchMu.Lock()
	if !c.watching || c.watchGen != gen {
		c.watchMu.Unlock()
		return
	}
	watchers := c.watchers
	debouncer := c.debouncer
	cancel := c.cancel
	c.watching = false
	c.watchers = nil
	c.debouncer = nil
	c.cancel = nil
	c.watchMu.Unlock()

	debouncer.Stop()
	var errs []error
	for _, w := range watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	cancel()

	if err := errors.Join(errs...); err != nil {
		c.logger.Warn("failed to close watchers", "error", err)
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.SetWatchedFiles(0)
	}
	c.logger.Info("stopped watching configuration")
}

// Watching reports whether Watch is active.
func (c *Config) Watching() bool {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	return c.watching
}
