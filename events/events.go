package events

import (
	"context"
	"sync"

	"bloop/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypePotSettled    EventType = "pot_settled"
	EventTypeLoanResolved  EventType = "loan_resolved"
	EventTypeMatchFinished EventType = "match_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	GuildID      int64
	UserID       int64
	ChangeAmount int64
	Reason       string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// PotSettledEvent carries the outcome of a dice pot session so the
// transport layer can announce it in the originating channel
type PotSettledEvent struct {
	Result *models.PotResult
}

func (e PotSettledEvent) Type() EventType {
	return EventTypePotSettled
}

// LoanResolvedEvent represents a loan that was accepted or rejected
type LoanResolvedEvent struct {
	LoanID     int64
	GuildID    int64
	LenderID   int64
	BorrowerID int64
	Amount     int64
	Accepted   bool
}

func (e LoanResolvedEvent) Type() EventType {
	return EventTypeLoanResolved
}

// MatchFinishedEvent represents a finished tic-tac-toe match
type MatchFinishedEvent struct {
	MatchID  string
	GuildID  int64
	WinnerID int64 // zero on a draw
	Reward   int64
}

func (e MatchFinishedEvent) Type() EventType {
	return EventTypeMatchFinished
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

// Publish emits an event immediately with a background context. It lets the
// bus stand in where a transactional publisher is not needed, such as timer
// driven settlements.
func (b *Bus) Publish(e Event) {
	b.Emit(context.Background(), e)
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with
	// transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
