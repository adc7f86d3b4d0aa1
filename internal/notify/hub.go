// Package notify fans change events out to live subscribers. The hub is the
// only concurrently mutated structure in the store: registration and removal
// race with in-flight publishes, so all subscriber-set access goes through
// the hub's lock and nothing outside this package touches the registry.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"articleapi/internal/model"
)

// DefaultBufferSize is the per-subscriber channel capacity used when the
// configured size is not positive.
const DefaultBufferSize = 16

// Subscription is a live connection's handle: a buffered event channel plus
// the identity used to unsubscribe. A subscription only moves Open -> Closed;
// a reconnect registers a new one.
type Subscription struct {
	id string
	ch chan model.ChangeEvent
}

// Events is the stream of change events. The channel is closed when the
// subscription is removed from the hub.
func (s *Subscription) Events() <-chan model.ChangeEvent {
	return s.ch
}

// Hub maintains the subscriber set and delivers events without ever blocking
// the publisher. Delivery is best-effort: a subscriber whose buffer is full
// misses that event; a closed subscriber is skipped.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	log    *logrus.Logger
}

// NewHub creates an empty hub with the given per-subscriber buffer size.
func NewHub(buffer int, log *logrus.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a new live connection and returns its handle.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id: uuid.NewString(),
		ch: make(chan model.ChangeEvent, h.buffer),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"subscriber_id": sub.id, "subscribers": count}).Debug("subscriber connected")
	return sub
}

// Unsubscribe removes the connection and closes its event channel. Safe to
// call multiple times and safe against a concurrent Publish: channels are
// only closed under the write lock, sends only happen under the read lock.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	_, present := h.subs[sub.id]
	if present {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if present {
		h.log.WithFields(logrus.Fields{"subscriber_id": sub.id, "subscribers": count}).Debug("subscriber disconnected")
	}
}

// Publish delivers the event to every currently registered subscriber. The
// send is non-blocking per subscriber: a full buffer means that subscriber
// misses this event, and never stalls the publisher or the other
// subscribers. Publish itself cannot fail.
func (h *Hub) Publish(event model.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.log.WithFields(logrus.Fields{
				"subscriber_id": sub.id,
				"event_type":    string(event.Type),
			}).Debug("subscriber buffer full, event dropped")
		}
	}
}

// Len reports the current number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
