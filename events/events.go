package events

import (
	"context"
	"sync"

	"cashier/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSessionOpened      EventType = "session_opened"
	EventTypeSessionClosed      EventType = "session_closed"
	EventTypeDepositSettled     EventType = "deposit_settled"
	EventTypeLossPaid           EventType = "loss_paid"
	EventTypeProfitClaimed      EventType = "profit_claimed"
	EventTypeWithdrawalExecuted EventType = "withdrawal_executed"
	EventTypeBonusChanged       EventType = "bonus_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// SessionOpenedEvent fires when a game opens a player session.
type SessionOpenedEvent struct {
	GameID uint64
	Player models.Principal
}

func (e SessionOpenedEvent) Type() EventType {
	return EventTypeSessionOpened
}

// SessionClosedEvent fires when a session settles and releases its
// tracked exposure.
type SessionClosedEvent struct {
	GameID uint64
	Amount models.Asset
}

func (e SessionClosedEvent) Type() EventType {
	return EventTypeSessionClosed
}

// DepositSettledEvent fires when a tagged player stake is credited to a
// game's operator balance.
type DepositSettledEvent struct {
	GameID uint64
	Player models.Principal
	Stake  models.Asset
	Profit int64
}

func (e DepositSettledEvent) Type() EventType {
	return EventTypeDepositSettled
}

// LossPaidEvent fires when a player win is paid out.
type LossPaidEvent struct {
	GameID uint64
	Player models.Principal
	Payout models.Asset
}

func (e LossPaidEvent) Type() EventType {
	return EventTypeLossPaid
}

// ProfitClaimedEvent fires when a game's balance is swept to its
// beneficiary.
type ProfitClaimedEvent struct {
	GameID      uint64
	Beneficiary models.Principal
	Amount      models.Asset
}

func (e ProfitClaimedEvent) Type() EventType {
	return EventTypeProfitClaimed
}

// WithdrawalExecutedEvent fires when the owner withdraws platform funds.
// Constrained marks the throttled tier.
type WithdrawalExecutedEvent struct {
	Beneficiary models.Principal
	Amount      models.Asset
	Constrained bool
}

func (e WithdrawalExecutedEvent) Type() EventType {
	return EventTypeWithdrawalExecuted
}

// BonusChangedEvent fires on any player bonus balance mutation.
type BonusChangedEvent struct {
	Player models.Principal
	Delta  models.Asset
	Reason string
}

func (e BonusChangedEvent) Type() EventType {
	return EventTypeBonusChanged
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

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the commit succeeds.
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

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events are processed independently of the transaction lifecycle,
	// so emission uses a fresh context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
