// Package events turns verified provider payloads into a closed set of domain
// events. Nothing downstream of Classify sees the provider's JSON shapes.
package events

import (
	"errors"

	"github.com/google/uuid"
)

var ErrMalformedEvent = errors.New("malformed event")

type Kind string

const (
	KindPaymentCompleted      Kind = "payment_completed"
	KindPaymentFailed         Kind = "payment_failed"
	KindPaymentSessionExpired Kind = "payment_session_expired"
	KindIgnored               Kind = "ignored"
)

// Event is implemented only by the types of this package.
type Event interface {
	Kind() Kind
	ID() string
	event()
}

type PaymentCompleted struct {
	EventID          string
	OrderID          uuid.UUID
	PaymentReference string
}

type PaymentFailed struct {
	EventID          string
	PaymentReference string
	FailureMessage   string
}

type PaymentSessionExpired struct {
	EventID string
	OrderID uuid.UUID
}

type Ignored struct {
	EventID string
	Type    string
}

func (PaymentCompleted) Kind() Kind      { return KindPaymentCompleted }
func (PaymentFailed) Kind() Kind         { return KindPaymentFailed }
func (PaymentSessionExpired) Kind() Kind { return KindPaymentSessionExpired }
func (Ignored) Kind() Kind               { return KindIgnored }

func (e PaymentCompleted) ID() string      { return e.EventID }
func (e PaymentFailed) ID() string         { return e.EventID }
func (e PaymentSessionExpired) ID() string { return e.EventID }
func (e Ignored) ID() string               { return e.EventID }

func (PaymentCompleted) event()      {}
func (PaymentFailed) event()         {}
func (PaymentSessionExpired) event() {}
func (Ignored) event()               {}
