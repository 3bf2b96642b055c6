package domain

import "errors"

var (
	// Account errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAccountID  = errors.New("invalid account ID")

	// Locking errors
	ErrConcurrentOperation = errors.New("concurrent operation on account")

	// Activity errors
	ErrWindowReadOnly  = errors.New("activity window is read-only")
	ErrInvalidActivity = errors.New("activity must have a source or a target account")

	// Transfer errors
	ErrSameAccount   = errors.New("cannot transfer to same account")
	ErrInvalidAmount = errors.New("amount must be positive")
)
