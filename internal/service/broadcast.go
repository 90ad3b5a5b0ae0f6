package service

import (
	"sync"

	"github.com/msomdec/photocat/internal/domain"
)

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before events are dropped for it.
const subscriberBuffer = 16

// Broadcaster fans catalog mutation events out to any number of
// subscribers (the websocket hub, SSE streams). Publish never blocks:
// subscribers that fall behind lose events rather than stalling mutations.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan domain.Event]bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan domain.Event]bool)}
}

// Subscribe registers a new subscriber and returns its event channel.
func (b *Broadcaster) Subscribe() chan domain.Event {
	ch := make(chan domain.Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = true
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan domain.Event) {
	b.mu.Lock()
	if b.subs[ch] {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber. It satisfies the
// gallery's EventSink signature so it can be injected directly.
func (b *Broadcaster) Publish(event string, payload any) {
	ev := domain.Event{Name: event, Payload: payload}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
