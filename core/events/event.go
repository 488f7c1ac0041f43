package events

import (
	"sync"

	"assetledger/core/types"
)

// Event represents a structured state change emitted by a ledger component.
type Event interface {
	EventType() string
}

// Structured is implemented by events that can render themselves into the
// generic attribute form consumed by loggers and indexers.
type Structured interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. logs, metrics).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in emission order.
func (r *Recorder) Types() []string {
	recorded := r.Events()
	out := make([]string, 0, len(recorded))
	for _, evt := range recorded {
		out = append(out, evt.EventType())
	}
	return out
}
