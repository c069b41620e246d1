package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Task errors
	ErrMsgTaskNotFound     = "task not found"
	ErrMsgInvalidTaskState = "invalid task state transition"
	ErrMsgInvalidTaskLevel = "invalid task level"

	// Ledger errors
	ErrMsgInvalidAmount       = "invalid amount"
	ErrMsgInsufficientBalance = "insufficient balance"
	ErrMsgStoreConflict       = "store write conflict"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// Task errors
	ErrTaskNotFound     = errors.New(ErrMsgTaskNotFound)
	ErrInvalidTaskState = errors.New(ErrMsgInvalidTaskState)
	ErrInvalidTaskLevel = errors.New(ErrMsgInvalidTaskLevel)

	// Ledger errors
	ErrInvalidAmount       = errors.New(ErrMsgInvalidAmount)
	ErrInsufficientBalance = errors.New(ErrMsgInsufficientBalance)
	ErrStoreConflict       = errors.New(ErrMsgStoreConflict)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// InsufficientBalanceError reports a redemption that exceeds the current
// balance. It carries both amounts so callers can render an exact message.
type InsufficientBalanceError struct {
	Requested int
	Balance   int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %d XP, balance is %d XP", ErrMsgInsufficientBalance, e.Requested, e.Balance)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
