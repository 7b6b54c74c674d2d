// Package events carries change notifications between the services and
// connected readers.
//
// Bus is an in-process synchronous dispatcher; Hub forwards every bus event
// to websocket clients so open readers can refresh.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	HighlightsChanged Type = "highlights.changed"
	NotesChanged      Type = "notes.changed"
	ProgressChanged   Type = "progress.changed"
	ChaptersChanged   Type = "chapters.changed"
	DraftChanged      Type = "draft.changed"
	DocumentAdded     Type = "document.added"
	DocumentDeleted   Type = "document.deleted"
	// LibraryImported is published after a backup has been restored.
	LibraryImported Type = "library.imported"
)

type Event struct {
	Type       Type      `json:"type"`
	DocumentID string    `json:"document_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher is the side of the bus services depend on.
type Publisher interface {
	Publish(Event)
}

// Subscriber is a callback invoked when an event is published.
type Subscriber func(Event)

// Bus dispatches events to subscribers inline, in subscription order.
type Bus struct {
	subscribers []Subscriber
	mu          sync.Mutex
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish dispatches e to all subscribers.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// On wraps fn so it only sees events of type t.
func On(t Type, fn Subscriber) Subscriber {
	return func(e Event) {
		if e.Type == t {
			fn(e)
		}
	}
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
