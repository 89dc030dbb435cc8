package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderIDText = "8f14e45f-ceea-467f-a0e6-1b7a2d0c9d11"

func TestClassifyRecognizedEvents(t *testing.T) {
	orderID := uuid.MustParse(orderIDText)
	tests := []struct {
		name     string
		body     string
		expected Event
	}{
		{
			name: "checkout completed",
			body: `{"id":"evt_1","object":"event","type":"checkout.session.completed",
				"data":{"object":{"id":"cs_1","object":"checkout.session","payment_intent":"pi_1",
				"metadata":{"order_id":"` + orderIDText + `"}}}}`,
			expected: PaymentCompleted{EventID: "evt_1", OrderID: orderID, PaymentReference: "pi_1"},
		},
		{
			name: "checkout completed with expanded payment intent",
			body: `{"id":"evt_2","type":"checkout.session.completed",
				"data":{"object":{"id":"cs_1","payment_intent":{"id":"pi_2"},
				"metadata":{"order_id":"` + orderIDText + `"}}}}`,
			expected: PaymentCompleted{EventID: "evt_2", OrderID: orderID, PaymentReference: "pi_2"},
		},
		{
			name: "checkout completed without payment intent",
			body: `{"id":"evt_3","type":"checkout.session.completed",
				"data":{"object":{"id":"cs_1","payment_intent":null,
				"metadata":{"order_id":"` + orderIDText + `"}}}}`,
			expected: PaymentCompleted{EventID: "evt_3", OrderID: orderID},
		},
		{
			name: "checkout expired",
			body: `{"id":"evt_4","type":"checkout.session.expired",
				"data":{"object":{"id":"cs_1","metadata":{"order_id":"` + orderIDText + `"}}}}`,
			expected: PaymentSessionExpired{EventID: "evt_4", OrderID: orderID},
		},
		{
			name: "payment failed",
			body: `{"id":"evt_5","type":"payment_intent.payment_failed",
				"data":{"object":{"id":"pi_9","object":"payment_intent",
				"last_payment_error":{"message":"Your card was declined."}}}}`,
			expected: PaymentFailed{EventID: "evt_5", PaymentReference: "pi_9", FailureMessage: "Your card was declined."},
		},
		{
			name: "payment failed without error details",
			body: `{"id":"evt_6","type":"payment_intent.payment_failed",
				"data":{"object":{"id":"pi_9"}}}`,
			expected: PaymentFailed{EventID: "evt_6", PaymentReference: "pi_9", FailureMessage: "Unknown error"},
		},
		{
			name:     "unknown type is ignored",
			body:     `{"id":"evt_7","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`,
			expected: Ignored{EventID: "evt_7", Type: "charge.refunded"},
		},
		{
			name:     "unknown type with unexpected object shape is ignored",
			body:     `{"id":"evt_8","type":"customer.created","data":{"object":{"metadata":42}}}`,
			expected: Ignored{EventID: "evt_8", Type: "customer.created"},
		},
	}
	classifier := NewClassifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			event, err := classifier.Classify([]byte(test.body))
			require.NoError(t, err)
			assert.Equal(t, test.expected, event)
			assert.Equal(t, test.expected.Kind(), event.Kind())
		})
	}
}

func TestClassifyMalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not json`},
		{name: "no type", body: `{"id":"evt_1","data":{"object":{}}}`},
		{
			name: "completed without metadata",
			body: `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`,
		},
		{
			name: "completed without order id",
			body: `{"id":"evt_1","type":"checkout.session.completed",
				"data":{"object":{"id":"cs_1","metadata":{"cart":"x"}}}}`,
		},
		{
			name: "expired with order id that is not a uuid",
			body: `{"id":"evt_1","type":"checkout.session.expired",
				"data":{"object":{"id":"cs_1","metadata":{"order_id":"O1"}}}}`,
		},
		{
			name: "failed without payment intent id",
			body: `{"id":"evt_1","type":"payment_intent.payment_failed","data":{"object":{"object":"payment_intent"}}}`,
		},
	}
	classifier := NewClassifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := classifier.Classify([]byte(test.body))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}
