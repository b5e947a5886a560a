// Package events provides a broadcast channel for advisory pipeline
// events. Listeners are UI surfaces (REPL status line, logs); delivery
// is best-effort and never blocks the pipeline.
package events

import "sync"

// Phase values carried by Progress events.
const (
	PhaseCounting  = "counting"
	PhaseExecuting = "executing"
)

// Event is one advisory signal from the pipeline.
type Event interface{ isEvent() }

// ContextSwitched reports that a USE statement changed the session
// context.
type ContextSwitched struct {
	Connection string
	Schema     string
}

// PageReady reports a delivered page.
type PageReady struct {
	Page       int
	Rows       int
	Columns    []string
	TotalCount int64
}

// QueryFailed reports a terminal engine failure.
type QueryFailed struct {
	Message string
}

// Progress reports which phase the pipeline is in.
type Progress struct {
	Phase string
}

func (ContextSwitched) isEvent() {}
func (PageReady) isEvent()       {}
func (QueryFailed) isEvent()     {}
func (Progress) isEvent()        {}

// Notifier broadcasts events to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a Notifier with no listeners.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan Event]struct{})}
}

// Subscribe returns a buffered channel receiving published events.
// The caller must Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 16)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Publish sends ev to all listeners. Non-blocking: a listener whose
// buffer is full misses the event. Safe on a nil Notifier.
func (n *Notifier) Publish(ev Event) {
	if n == nil {
		return
	}
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
