// Package reactor provides the host side of strand: a readiness-
// driven event loop, the posted-event wake handles suspended tasks
// hand out, timers, and a name resolver that completes through a
// wake. The engine only ever sees the Event type, as an opaque
// handle.
package reactor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a wake handle: a callback registered with a Loop that runs
// on the loop's goroutine after the event is posted. Posting an
// already-posted event coalesces; posting after the loop closed is a
// no-op. Both make Post safe to call from timer and resolver
// goroutines at any time, including after the task it wakes has been
// terminated.
type Event struct {
	loop    *Loop
	handler func()
	armed   bool // guarded by loop.mu
}

// Post marks the event ready. The loop will invoke its handler on the
// next iteration. Thread-safe and idempotent while the post is
// pending.
func (e *Event) Post() {
	e.loop.post(e)
}

// Loop is a single-goroutine event loop. Handlers run strictly one
// at a time on the goroutine that called Run, which is what lets the
// engine confine all task stepping to one flow of control.
//
// The posted queue is FIFO and unbounded; a signal channel with a
// one-slot buffer coalesces wakeups so Run can also wait on context
// cancellation.
type Loop struct {
	mu     sync.Mutex
	posted []*Event
	signal chan struct{}
	closed bool
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		posted: make([]*Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// NewEvent registers a handler and returns its wake handle. The
// handler runs on the loop goroutine each time the event is posted.
func (l *Loop) NewEvent(handler func()) *Event {
	return &Event{loop: l, handler: handler}
}

func (l *Loop) post(e *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || e.armed {
		return
	}
	e.armed = true
	l.posted = append(l.posted, e)

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// take removes and returns the front posted event, clearing its armed
// flag so it can be posted again from inside its own handler.
func (l *Loop) take() (*Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.posted) == 0 {
		return nil, false
	}
	e := l.posted[0]
	l.posted[0] = nil
	l.posted = l.posted[1:]
	e.armed = false
	return e, true
}

// Run processes posted events until the context is cancelled or the
// loop is stopped. Must be called from exactly one goroutine; every
// handler runs on it.
func (l *Loop) Run(ctx context.Context) error {
	slog.Debug("reactor loop starting")

	for {
		e, ok := l.take()
		if ok {
			e.handler()
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("reactor loop stopping", "reason", "context cancelled")
			l.Stop()
			return ctx.Err()

		case _, open := <-l.signal:
			if !open && l.Len() == 0 {
				slog.Debug("reactor loop stopping", "reason", "loop closed")
				return nil
			}
		}
	}
}

// Stop closes the loop. Pending posts still drain; new posts are
// dropped. Safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}

// Len returns the number of pending posts.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted)
}

// DrainPosted synchronously runs handlers for everything posted so
// far, including events posted by those handlers, and returns how
// many ran. Useful for tests and for driving the loop without a
// background goroutine.
func (l *Loop) DrainPosted() int {
	n := 0
	for {
		e, ok := l.take()
		if !ok {
			return n
		}
		e.handler()
		n++
	}
}

// After arms a timer that posts e when d elapses. The returned timer
// can be stopped to cancel the wakeup; a post that fires after the
// task completed is harmless by the Event contract.
func (l *Loop) After(d time.Duration, e *Event) *time.Timer {
	return time.AfterFunc(d, e.Post)
}
