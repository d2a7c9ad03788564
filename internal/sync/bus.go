package sync

import (
	"encoding/json"
	"log"
	stdsync "sync"
)

// Event is the unified notification payload delivered to in-process
// observers for both local saves and applied remote updates.
type Event struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// Bus fans Event notifications out to per-key subscribers.
//
// Registration and deregistration are manual and must stay symmetric:
// the cancel func returned by Subscribe fully removes the handler, so a
// UI lifecycle that subscribes on mount and cancels on unmount never
// leaks channels.
type Bus struct {
	mu     stdsync.Mutex
	subs   map[string]map[int]chan Event
	next   int
	logger *log.Logger
}

// NewBus creates an empty event bus.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{
		subs:   make(map[string]map[int]chan Event),
		logger: logger,
	}
}

// Subscribe registers an observer for one entity key. The returned cancel
// func deregisters the observer and closes its channel; calling it more
// than once is safe.
func (b *Bus) Subscribe(key string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]chan Event)
	}
	id := b.next
	b.next++
	b.subs[key][id] = ch

	var once stdsync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[key]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(b.subs, key)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// SubscriberCount reports how many observers are registered for key.
func (b *Bus) SubscriberCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}

// Publish delivers an event to every subscriber of its key. Delivery is
// non-blocking; a subscriber whose buffer is full misses the event and a
// warning is logged. Sends happen under the same lock cancel closes
// channels under, so a concurrent cancel never closes a channel
// mid-publish.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[ev.Key] {
		select {
		case ch <- ev:
		default:
			b.logger.Printf("Warning: subscriber buffer full for %s, dropping event", ev.Key)
		}
	}
}
