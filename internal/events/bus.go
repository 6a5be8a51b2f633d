package events

import (
	"log"
	"sync"
)

// Event names published on the bus. The dashboard live channel relays the
// same names to connected browsers, so they are part of the wire contract.
const (
	BookingUpdate   = "booking-update"
	ActionCompleted = "booking-action-completed"
	AutoConfirmed   = "booking-auto-confirmed"
	LiveConnected   = "live-connected"
)

// Event is a single notification published on the bus.
type Event struct {
	Name string         `json:"event"`
	Data map[string]any `json:"data,omitempty"`
}

// Bus fans events out to in-process subscribers. Publish never blocks: a
// subscriber that cannot keep up has events dropped instead of stalling
// the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given channel buffer and returns
// the receive channel together with a cancel function. Cancel is idempotent
// and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("events: subscriber %d is lagging, dropped %q", id, evt.Name)
		}
	}
}
