package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	NullStatus    = Status("")
	PendingStatus = Status("pending")
	PaidStatus    = Status("paid")
	FailedStatus  = Status("failed")
	ExpiredStatus = Status("expired")
)

func (s Status) Valid() bool {
	switch s {
	case PendingStatus, PaidStatus, FailedStatus, ExpiredStatus:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case PaidStatus, FailedStatus, ExpiredStatus:
		return true
	}
	return false
}

type Order struct {
	ID               uuid.UUID
	Status           Status
	PaymentReference *string
	TotalPrice       decimal.Decimal
	UserID           uuid.UUID
	CreatedAt        time.Time
}
