package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tendhq/tend/internal/domain"
)

// Type represents the type of an event
type Type string

// Event types published by the ledger core. The UI and badge layers
// subscribe and re-query rather than holding any ledger state themselves.
const (
	TypeXPCredited         Type = "xp.credited"
	TypeXPRedeemed         Type = "xp.redeemed"
	TypeBalanceChanged     Type = "balance.changed"
	TypeCredibilityChanged Type = "credibility.changed"
	TypeTaskApproved       Type = "task.approved"
	TypeTaskRejected       Type = "task.rejected"
	TypeTaskExpired        Type = "task.expired"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Typed event payloads

// XPCreditedPayloadV1 is published after a successful task-completion credit.
// NewBalance and TransactionCount let passive observers (badges, UI) refresh
// without re-reading the ledger.
type XPCreditedPayloadV1 struct {
	UserID           string `json:"user_id"`
	TaskID           string `json:"task_id"`
	Amount           int    `json:"amount"`
	NewBalance       int    `json:"new_balance"`
	TransactionCount int    `json:"transaction_count"`
	Timestamp        int64  `json:"timestamp"`
}

// XPRedeemedPayloadV1 is published after a successful redemption.
type XPRedeemedPayloadV1 struct {
	UserID     string `json:"user_id"`
	Amount     int    `json:"amount"`
	Minutes    int    `json:"minutes"`
	NewBalance int    `json:"new_balance"`
	Timestamp  int64  `json:"timestamp"`
}

// BalanceChangedPayloadV1 is published after every successful ledger
// mutation, credit or redemption.
type BalanceChangedPayloadV1 struct {
	UserID     string `json:"user_id"`
	NewBalance int    `json:"new_balance"`
	AtSoftCap  bool   `json:"at_soft_cap"`
	Timestamp  int64  `json:"timestamp"`
}

// CredibilityChangedPayloadV1 is published when a task outcome moves a score.
type CredibilityChangedPayloadV1 struct {
	UserID   string             `json:"user_id"`
	Outcome  domain.TaskOutcome `json:"outcome"`
	OldScore int                `json:"old_score"`
	NewScore int                `json:"new_score"`
}

// TaskResolvedPayloadV1 is the payload for task approval/rejection/expiry.
type TaskResolvedPayloadV1 struct {
	TaskID     string             `json:"task_id"`
	UserID     string             `json:"user_id"`
	Level      domain.TaskLevel   `json:"level"`
	Outcome    domain.TaskOutcome `json:"outcome,omitempty"`
	CreditedXP int                `json:"credited_xp,omitempty"`
	Timestamp  int64              `json:"timestamp"`
}

// Type-safe event constructors

// NewXPCreditedEvent creates a new XP credited event
func NewXPCreditedEvent(userID, taskID string, amount, newBalance, txnCount int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TypeXPCredited,
		Payload: XPCreditedPayloadV1{
			UserID:           userID,
			TaskID:           taskID,
			Amount:           amount,
			NewBalance:       newBalance,
			TransactionCount: txnCount,
			Timestamp:        time.Now().Unix(),
		},
	}
}

// NewXPRedeemedEvent creates a new XP redeemed event
func NewXPRedeemedEvent(userID string, amount, minutes, newBalance int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TypeXPRedeemed,
		Payload: XPRedeemedPayloadV1{
			UserID:     userID,
			Amount:     amount,
			Minutes:    minutes,
			NewBalance: newBalance,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewBalanceChangedEvent creates a new balance changed event
func NewBalanceChangedEvent(userID string, newBalance int, atSoftCap bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TypeBalanceChanged,
		Payload: BalanceChangedPayloadV1{
			UserID:     userID,
			NewBalance: newBalance,
			AtSoftCap:  atSoftCap,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewCredibilityChangedEvent creates a new credibility changed event
func NewCredibilityChangedEvent(userID string, outcome domain.TaskOutcome, oldScore, newScore int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TypeCredibilityChanged,
		Payload: CredibilityChangedPayloadV1{
			UserID:   userID,
			Outcome:  outcome,
			OldScore: oldScore,
			NewScore: newScore,
		},
	}
}

// NewTaskResolvedEvent creates a task approved/rejected/expired event
func NewTaskResolvedEvent(eventType Type, task *domain.Task, outcome domain.TaskOutcome, creditedXP int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: TaskResolvedPayloadV1{
			TaskID:     task.ID,
			UserID:     task.UserID,
			Level:      task.Level,
			Outcome:    outcome,
			CreditedXP: creditedXP,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
