// Package notify decouples model state changes from the views that render them.
package notify

import (
	"sync"

	"github.com/mmcdole/boxoffice/internal/domain"
)

const defaultBuffer = 64

// Bus fans named events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
	funcs  map[uint64]listener
}

type listener struct {
	events map[domain.Event]bool
	fn     func(domain.Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:  make(map[uint64]*Subscription),
		funcs: make(map[uint64]listener),
	}
}

// Subscription delivers events on C. Delivery is non-blocking: if the
// subscriber falls behind, events are dropped. That is fine because events
// only say "something changed, re-query".
type Subscription struct {
	C <-chan domain.Event

	ch     chan domain.Event
	events map[domain.Event]bool
	bus    *Bus
	id     uint64
	once   sync.Once
}

// Subscribe listens for the given events, or for all events when none are given.
func (b *Bus) Subscribe(events ...domain.Event) *Subscription {
	ch := make(chan domain.Event, defaultBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscription{
		C:      ch,
		ch:     ch,
		events: eventSet(events),
		bus:    b,
		id:     b.nextID,
	}
	b.subs[s.id] = s
	return s
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}

// Listen calls fn synchronously from Post for matching events.
// fn must not block. The returned func removes the listener.
func (b *Bus) Listen(fn func(domain.Event), events ...domain.Event) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.funcs[id] = listener{events: eventSet(events), fn: fn}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.funcs, id)
		b.mu.Unlock()
	}
}

// Post delivers e to every interested subscriber.
func (b *Bus) Post(e domain.Event) {
	b.mu.RLock()
	var fns []func(domain.Event)
	for _, l := range b.funcs {
		if l.events == nil || l.events[e] {
			fns = append(fns, l.fn)
		}
	}
	for _, s := range b.subs {
		if s.events != nil && !s.events[e] {
			continue
		}
		select {
		case s.ch <- e:
		default: // Non-blocking if channel full
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

func eventSet(events []domain.Event) map[domain.Event]bool {
	if len(events) == 0 {
		return nil
	}
	set := make(map[domain.Event]bool, len(events))
	for _, e := range events {
		set[e] = true
	}
	return set
}
