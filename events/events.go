package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"walletbot/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated        EventType = "user_created"
	EventTypeTransactionCreated EventType = "transaction_created"
	EventTypeTransactionSettled EventType = "transaction_settled"
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeBetPlaced          EventType = "bet_placed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	TelegramID int64
	Username   string
	FirstName  string
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// TransactionCreatedEvent represents a new journal entry
type TransactionCreatedEvent struct {
	TransactionID   string
	TelegramID      int64
	TransactionType models.TransactionType
	Amount          int64
	Status          models.TransactionStatus
}

func (e TransactionCreatedEvent) Type() EventType {
	return EventTypeTransactionCreated
}

// TransactionSettledEvent represents a pending/processing transaction that an
// admin moved to Success
type TransactionSettledEvent struct {
	TransactionID   string
	TelegramID      int64
	TransactionType models.TransactionType
	Amount          int64
	ConfirmedBy     string
}

func (e TransactionSettledEvent) Type() EventType {
	return EventTypeTransactionSettled
}

// BalanceChangeEvent represents a ledger mutation that occurred
type BalanceChangeEvent struct {
	TelegramID   int64
	OldBalance   int64
	NewBalance   int64
	ChangeAmount int64
	Reason       models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent represents a bet that was placed through the game API
type BetPlacedEvent struct {
	TelegramID    int64
	TransactionID string
	Amount        int64
	Selection     string
	PeriodID      int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
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

	// Call handlers asynchronously to avoid blocking
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

// TransactionalBus stashes events raised inside a unit of work until the DB
// commit succeeds, then flushes them to the underlying bus. Discarded on
// rollback.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional wrapper around a bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit.
// Events are emitted on a background context because they outlive the
// transaction context that produced them.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after a DB rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
