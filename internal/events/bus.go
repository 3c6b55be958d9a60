// Package events is the in-process change feed for the device registry,
// scenes and favorites. The WebSocket hub is its main subscriber.
package events

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// EventType identifies the kind of event.
type EventType string

const (
	DeviceAdded        EventType = "device.added"
	DeviceRemoved      EventType = "device.removed"
	DeviceStateChanged EventType = "device.state_changed"

	SyncModeChanged EventType = "sync.changed"

	SceneCreated EventType = "scene.created"
	SceneUpdated EventType = "scene.updated"
	SceneDeleted EventType = "scene.deleted"
	SceneApplied EventType = "scene.applied"

	FavoritesChanged EventType = "favorites.changed"

	RefreshCompleted EventType = "refresh.completed"
)

// Event is one change notification. Data is the payload already encoded, so
// every subscriber sees the same bytes.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent stamps data with the current time. A payload that cannot be
// encoded becomes null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// SubscriberFunc is called for each event. It runs on the publisher's
// goroutine and must not block.
type SubscriberFunc func(Event)

type subscriber struct {
	id    uint64
	fn    SubscriberFunc
	types []EventType
}

func (s subscriber) wants(t EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Bus delivers every event synchronously to its subscribers, in the order
// they subscribed. The zero Bus is not usable; a nil *Bus drops everything.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for the given event types, or for all events when
// none are named. The returned func unsubscribes and is safe to call twice.
func (b *Bus) Subscribe(fn SubscriberFunc, types ...EventType) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn, types: slices.Clone(types)})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscriber) bool { return s.id == id })
		b.mu.Unlock()
	}
}

// Publish hands e to each interested subscriber. Subscribers added or removed
// during delivery take effect from the next event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.wants(e.Type) {
			s.fn(e)
		}
	}
}

// Emit publishes data as an event of type t.
func (b *Bus) Emit(t EventType, data any) {
	if b == nil {
		return
	}
	b.Publish(NewEvent(t, data))
}
