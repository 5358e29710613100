package events

import (
	"context"
	"sync"

	"curator/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeActivityStarted   EventType = "activity_started"
	EventTypeEntryAccepted     EventType = "entry_accepted"
	EventTypeActivitySettled   EventType = "activity_settled"
	EventTypeActivityReset     EventType = "activity_reset"
	EventTypeActivityCancelled EventType = "activity_cancelled"
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeUserCreated       EventType = "user_created"
)

// AllEventTypes lists every event type the bus carries
var AllEventTypes = []EventType{
	EventTypeActivityStarted,
	EventTypeEntryAccepted,
	EventTypeActivitySettled,
	EventTypeActivityReset,
	EventTypeActivityCancelled,
	EventTypeBalanceChange,
	EventTypeUserCreated,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ActivityStartedEvent is emitted when a raffle or prediction opens
type ActivityStartedEvent struct {
	GuildID    string              `json:"guild_id"`
	ActivityID uuid.UUID           `json:"activity_id"`
	Kind       models.ActivityKind `json:"kind"`
	Title      string              `json:"title"`
	StartedBy  string              `json:"started_by"`
}

func (e ActivityStartedEvent) Type() EventType {
	return EventTypeActivityStarted
}

// EntryAcceptedEvent is emitted for every successful raffle entry or prediction bet.
// Amount is tickets for raffles and staked tokens for predictions.
type EntryAcceptedEvent struct {
	GuildID    string              `json:"guild_id"`
	ActivityID uuid.UUID           `json:"activity_id"`
	Kind       models.ActivityKind `json:"kind"`
	UserID     string              `json:"user_id"`
	Amount     int64               `json:"amount"`
	Option     string              `json:"option,omitempty"`
}

func (e EntryAcceptedEvent) Type() EventType {
	return EventTypeEntryAccepted
}

// ActivitySettledEvent is emitted when an activity ends with winners
type ActivitySettledEvent struct {
	GuildID       string              `json:"guild_id"`
	ActivityID    uuid.UUID           `json:"activity_id"`
	Kind          models.ActivityKind `json:"kind"`
	Winners       []string            `json:"winners"`
	Payouts       map[string]int64    `json:"payouts,omitempty"`
	TotalPool     int64               `json:"total_pool"`
	WinningOption string              `json:"winning_option,omitempty"`
}

func (e ActivitySettledEvent) Type() EventType {
	return EventTypeActivitySettled
}

// ActivityResetEvent is emitted when an activity is cleared and reopened
type ActivityResetEvent struct {
	GuildID    string              `json:"guild_id"`
	ActivityID uuid.UUID           `json:"activity_id"`
	Kind       models.ActivityKind `json:"kind"`
}

func (e ActivityResetEvent) Type() EventType {
	return EventTypeActivityReset
}

// ActivityCancelledEvent is emitted when an activity is cleared and closed
type ActivityCancelledEvent struct {
	GuildID    string              `json:"guild_id"`
	ActivityID uuid.UUID           `json:"activity_id"`
	Kind       models.ActivityKind `json:"kind"`
}

func (e ActivityCancelledEvent) Type() EventType {
	return EventTypeActivityCancelled
}

// BalanceChangeEvent represents a balance change that was persisted
type BalanceChangeEvent struct {
	GuildID      string `json:"guild_id"`
	UserID       string `json:"user_id"`
	OldBalance   int64  `json:"old_balance"`
	NewBalance   int64  `json:"new_balance"`
	ChangeAmount int64  `json:"change_amount"`
	Reason       string `json:"reason"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user record
type UserCreatedEvent struct {
	GuildID        string `json:"guild_id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
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
		"event_type":    eventType,
		"handler_count": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"event_type":    event.Type(),
		"handler_count": len(handlers),
	}).Debug("Emitting event")

	// Handlers run asynchronously so a slow subscriber never blocks the emitter
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"event_type":    event.Type(),
						"handler_index": handlerIndex,
						"panic":         r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits, then flushes them to the underlying bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending reports how many events are waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits pending events; called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pending_count", len(b.pending)).Debug("Flushing transactional events")

	// Handlers outlive the transaction, so they get a context that is not
	// cancelled with it
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
