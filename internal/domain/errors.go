package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for non-positive point amounts, negative
	// currency amounts and malformed identifiers, before persistence is touched.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict is returned when a mutation collides with current state,
	// e.g. a booking slot that is already taken or a purchase already settled.
	ErrConflict = errors.New("conflict")

	// ErrInsufficientBalance is the sentinel for redemption failures. Use
	// errors.Is against it; the concrete error carries the amounts.
	ErrInsufficientBalance = errors.New("insufficient loyalty balance")
)

// InsufficientBalanceError reports a redemption that exceeds the client's
// current balance.
type InsufficientBalanceError struct {
	Requested int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient loyalty balance: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
