package domain

import "errors"

var (
	ErrExamNotFound        = errors.New("exam not found")
	ErrExamInactive        = errors.New("exam is not active")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInsufficientContent = errors.New("exam has fewer questions than it serves")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptFinished     = errors.New("attempt already finished")
	ErrInvalidStatus       = errors.New("invalid attempt status")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionClosed   = errors.New("transaction is already closed")
	ErrInvalidOrder        = errors.New("invalid order request")
	ErrUnsupportedGateway  = errors.New("unsupported payment gateway")
)
