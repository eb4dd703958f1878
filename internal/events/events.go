// Package events propagates storage changes across independently running
// views. It is the server-side analog of the browser storage event: advisory
// only, never serializing writes.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	KindSessionChanged  = "session_changed"
	KindUserDataChanged = "user_data_changed"
)

// Event describes a change to the storage medium.
type Event struct {
	Kind      string    `json:"kind"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(kind, username string) Event {
	return Event{Kind: kind, Username: username, Timestamp: time.Now()}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Notifier publishes change events. Implementations must be safe to call
// concurrently.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Bus is an in-process Notifier for single-process deployments and tests.
// Handlers run synchronously on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future events.
func (b *Bus) Subscribe(handler func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	handlers := make([]func(Event), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
	return nil
}

func (b *Bus) Close() error { return nil }
