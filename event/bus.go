package event

import (
	"log"
	"sync"
)

// Handler consumes a single event. Returned errors are logged and
// dropped; nothing here ever propagates back into the transaction
// that produced the event.
type Handler func(Event) error

// Bus delivers events to subscribers on a background goroutine.
// Publish never blocks the caller beyond the channel buffer and never
// returns an error: by the time an event exists, its transaction has
// already committed.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	events   chan Event
	done     chan struct{}
	closed   sync.Once
}

// NewBus creates a started Bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	b := &Bus{
		handlers: make(map[string][]Handler),
		events:   make(chan Event, buffer),
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers a handler for an event name. Use "*" to receive
// every event.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish enqueues an event for asynchronous delivery. If the buffer
// is full the event is dropped with a log line rather than stalling
// the request path.
func (b *Bus) Publish(e Event) {
	select {
	case b.events <- e:
	default:
		log.Printf("event: buffer full, dropping %s", e.Name())
	}
}

// PublishAll enqueues a batch in order.
func (b *Bus) PublishAll(events []Event) {
	for _, e := range events {
		b.Publish(e)
	}
}

// Close stops delivery after draining queued events.
func (b *Bus) Close() {
	b.closed.Do(func() {
		close(b.events)
		<-b.done
	})
}

func (b *Bus) run() {
	defer close(b.done)
	for e := range b.events {
		b.dispatch(e)
	}
}

func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	hs := append(append([]Handler(nil), b.handlers[e.Name()]...), b.handlers["*"]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(e); err != nil {
			log.Printf("event: handler failed for %s: %v", e.Name(), err)
		}
	}
}
