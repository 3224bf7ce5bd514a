package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// EventHandler processes a single event. Handlers must not block; slow
// consumers should buffer on their own side.
type EventHandler func(Event)

// EventBus is the interface modules publish and subscribe through.
type EventBus interface {
	Publish(event Event)
	PublishAsync(event Event)
	Subscribe(types []EventType, handler EventHandler) string
	SubscribeAll(handler EventHandler) string
	Unsubscribe(subscriptionID string)
}

type subscription struct {
	id      string
	types   map[EventType]bool // empty means all types
	handler EventHandler
}

// Bus is the in-memory EventBus implementation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*subscription
	logger hclog.Logger
}

// NewBus creates an event bus.
func NewBus(logger hclog.Logger) *Bus {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Bus{
		subs:   make(map[string]*subscription),
		logger: logger,
	}
}

// Publish delivers the event to all matching subscribers synchronously.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subs))
	for _, sub := range b.subs {
		if len(sub.types) == 0 || sub.types[event.Type] {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// PublishAsync delivers the event without blocking the caller.
func (b *Bus) PublishAsync(event Event) {
	go b.Publish(event)
}

// Subscribe registers a handler for the given event types and returns the
// subscription ID.
func (b *Bus) Subscribe(types []EventType, handler EventHandler) string {
	sub := &subscription{
		id:      uuid.NewString(),
		types:   make(map[EventType]bool, len(types)),
		handler: handler,
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	b.logger.Debug("event subscription added", "id", sub.id, "types", len(types))
	return sub.id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler EventHandler) string {
	return b.Subscribe(nil, handler)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	delete(b.subs, subscriptionID)
	b.mu.Unlock()
}

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// SetGlobalBus installs the bus shared by all modules.
func SetGlobalBus(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// GetGlobalBus returns the shared bus, or a fresh one if none was set.
func GetGlobalBus() EventBus {
	globalMu.RLock()
	if globalBus != nil {
		defer globalMu.RUnlock()
		return globalBus
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalBus == nil {
		globalBus = NewBus(nil)
	}
	return globalBus
}
