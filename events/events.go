package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRecordCreated      EventType = "record_created"
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeItemsExpired       EventType = "items_expired"
	EventTypeBackendStateChange EventType = "backend_state_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RecordCreatedEvent is emitted when a default record is synthesized for an
// id seen for the first time.
type RecordCreatedEvent struct {
	Kind string
	ID   int64
}

func (e RecordCreatedEvent) Type() EventType {
	return EventTypeRecordCreated
}

// BalanceChangeEvent represents a counter change on a user record.
type BalanceChangeEvent struct {
	UserID       int64
	Field        string
	OldValue     int64
	NewValue     int64
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// ItemsExpiredEvent is emitted after a sweep removes expired entries from a
// user record.
type ItemsExpiredEvent struct {
	UserID    int64
	Purchases int
	Roles     int
	Reminders int
}

func (e ItemsExpiredEvent) Type() EventType {
	return EventTypeItemsExpired
}

// BackendStateChangeEvent represents a remote backend state transition.
type BackendStateChangeEvent struct {
	Backend  string
	OldState string
	NewState string
}

func (e BackendStateChangeEvent) Type() EventType {
	return EventTypeBackendStateChange
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the store's write path
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
