package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"mercator-hq/confkit/pkg/tree"
)

// EventType identifies what happened to a Config.
type EventType string

const (
	// EventChange is emitted when a reload produced different data.
	EventChange EventType = "change"

	// EventReload is emitted after every successful reload.
	EventReload EventType = "reload"

	// EventError is emitted when a reload or a watcher fails.
	EventError EventType = "error"
)

// Event is delivered to listeners.
type Event struct {
	ID   string
	Type EventType
	Time time.Time

	// NewData and OldData are set for change and reload events.
	NewData tree.Frozen
	OldData tree.Frozen

	// ChangedPaths lists the sorted dot paths that differ.
	ChangedPaths []string

	// Err is set for error events.
	Err error

	// Source is the watched file an error event originated from, if any.
	Source string
}

// Listener receives events. Listeners run synchronously on the goroutine
// that produced the event and must not block for long.
type Listener func(Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listener struct {
	id  ListenerID
	typ EventType
	fn  Listener
}

// On registers fn for events of type t.
func (c *Config) On(t EventType, fn Listener) ListenerID {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	c.nextID++
	c.listeners = append(c.listeners, listener{id: c.nextID, typ: t, fn: fn})
	return c.nextID
}

// Off removes a listener. It reports whether the listener was registered.
func (c *Config) Off(id ListenerID) bool {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// emit delivers ev to the listeners registered for its type, in
// registration order. A panicking listener is logged and skipped.
func (c *Config) emit(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	c.listenerMu.RLock()
	var targets []listener
	for _, l := range c.listeners {
		if l.typ == ev.Type {
			targets = append(targets, l)
		}
	}
	c.listenerMu.RUnlock()

	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordEvent(string(ev.Type))
	}

	for _, l := range targets {
		c.deliver(l, ev)
	}
}

func (c *Config) deliver(l listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener panicked",
				"event", ev.Type,
				"listener", l.id,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	l.fn(ev)
}
