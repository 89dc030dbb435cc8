package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

const (
	checkoutSessionCompleted    = stripe.EventType("checkout.session.completed")
	checkoutSessionExpired      = stripe.EventType("checkout.session.expired")
	paymentIntentPaymentFailed  = stripe.EventType("payment_intent.payment_failed")
	orderIDMetadataKey          = "order_id"
	unknownPaymentFailureReason = "Unknown error"
)

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify decodes an authenticated payload. Unrecognized event types yield
// Ignored; ErrMalformedEvent is returned only for bodies that are not events at
// all or for recognized events missing the fields reconciliation needs.
func (c *Classifier) Classify(body []byte) (Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}

	switch event.Type {
	case checkoutSessionCompleted:
		session, err := decodeObject[stripe.CheckoutSession](event)
		if err != nil {
			return nil, err
		}
		orderID, err := orderIDFromMetadata(session.Metadata)
		if err != nil {
			return nil, err
		}
		res := PaymentCompleted{
			EventID: event.ID,
			OrderID: orderID,
		}
		if session.PaymentIntent != nil {
			res.PaymentReference = session.PaymentIntent.ID
		}
		return res, nil

	case checkoutSessionExpired:
		session, err := decodeObject[stripe.CheckoutSession](event)
		if err != nil {
			return nil, err
		}
		orderID, err := orderIDFromMetadata(session.Metadata)
		if err != nil {
			return nil, err
		}
		return PaymentSessionExpired{
			EventID: event.ID,
			OrderID: orderID,
		}, nil

	case paymentIntentPaymentFailed:
		intent, err := decodeObject[stripe.PaymentIntent](event)
		if err != nil {
			return nil, err
		}
		if intent.ID == "" {
			return nil, fmt.Errorf("%w: payment intent without id", ErrMalformedEvent)
		}
		message := unknownPaymentFailureReason
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			message = intent.LastPaymentError.Msg
		}
		return PaymentFailed{
			EventID:          event.ID,
			PaymentReference: intent.ID,
			FailureMessage:   message,
		}, nil
	}

	return Ignored{
		EventID: event.ID,
		Type:    string(event.Type),
	}, nil
}

func decodeObject[T any](event stripe.Event) (T, error) {
	var out T
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, fmt.Errorf("%w: %s without data object", ErrMalformedEvent, event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, &out); err != nil {
		return out, fmt.Errorf("%w: %s object: %w", ErrMalformedEvent, event.Type, err)
	}
	return out, nil
}

func orderIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	if metadata == nil {
		return uuid.Nil, fmt.Errorf("%w: session without metadata", ErrMalformedEvent)
	}
	raw, ok := metadata[orderIDMetadataKey]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%w: session metadata without %s", ErrMalformedEvent, orderIDMetadataKey)
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q: %w", ErrMalformedEvent, orderIDMetadataKey, raw, err)
	}
	return orderID, nil
}
