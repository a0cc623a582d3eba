package truco

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalState   = errors.New("illegal state")
	ErrIllegalIndex   = errors.New("illegal card index")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrTableFull      = errors.New("table full")
	ErrAlreadyStarted = errors.New("match already started")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrUnknownAction  = errors.New("unknown action")
)

// InsufficientFundsError names the participant whose balance blocked the
// buy-in. Starting a match is all-or-nothing: no balance is touched when
// this is returned.
type InsufficientFundsError struct {
	PlayerID string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for player %s", e.PlayerID)
}

func errIllegalState(msg string) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, msg)
}
