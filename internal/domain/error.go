package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Redemption and generation errors
	ErrCodeAlreadyUsed    = errors.New("code already used")
	ErrLimitExceeded      = errors.New("per-user redemption limit reached")
	ErrCollisionExhausted = errors.New("code generation retry budget exhausted")
	ErrBadPrefix          = errors.New("campaign prefix must be two uppercase letters")
	ErrBatchTooLarge      = errors.New("requested batch would saturate the code address space")

	// Registration errors
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
)
