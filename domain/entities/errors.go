package entities

import (
	"errors"
	"fmt"
	"time"
)

// Ledger failure set. Every ledger operation returns either its success
// payload or one of these; anything else is an infrastructure error and
// must be treated as such by callers.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAccountNotFound   = errors.New("account not found")
	ErrServerNotFound    = errors.New("server not found")
	ErrSenderNotFound    = errors.New("sender not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfPay           = errors.New("cannot pay yourself")
	ErrNotLinked         = errors.New("account is not linked to discord")
	ErrNameTaken         = errors.New("server name already exists")
)

// AlreadyClaimedError signals that the daily reward was claimed within
// the current reset window.
type AlreadyClaimedError struct {
	NextEligibleAt time.Time
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next reset at %s", e.NextEligibleAt.Format(time.RFC3339))
}
