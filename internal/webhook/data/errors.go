package data

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrStoreUnavailable = errors.New("order store unavailable")
	ErrInvalidStatus    = errors.New("invalid order status")
)
