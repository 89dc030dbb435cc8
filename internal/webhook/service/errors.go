package service

import (
	"errors"

	"payment-webhook/internal/webhook/data"
)

var (
	ErrOrderNotFound    = data.ErrOrderNotFound
	ErrConflictingState = errors.New("order is in a conflicting terminal state")
	ErrConcurrentUpdate = errors.New("order kept changing concurrently")
	ErrUnknownPolicy    = errors.New("unknown late payment policy")
	ErrUnsupportedEvent = errors.New("event kind is not reconcilable")
	ErrStoreUnavailable = data.ErrStoreUnavailable
)
