package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"payment-webhook/internal/webhook/data"
	"payment-webhook/pkg/logging"
)

type fakeContacts struct {
	order     data.Order
	recipient *string
	err       error
	calls     int
}

func (f *fakeContacts) GetOrderWithUser(_ context.Context, _ uuid.UUID) (data.Order, *string, error) {
	f.calls++
	return f.order, f.recipient, f.err
}

type sentEmail struct {
	recipient string
	subject   string
	body      string
	deadline  time.Time
	ctxErr    error
}

type fakeSender struct {
	enabled bool
	err     error
	sent    []sentEmail
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func (f *fakeSender) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	deadline, _ := ctx.Deadline()
	f.sent = append(f.sent, sentEmail{
		recipient: recipient,
		subject:   subject,
		body:      htmlBody,
		deadline:  deadline,
		ctxErr:    ctx.Err(),
	})
	return f.err
}

func strPtr(s string) *string { return &s }

func testOrder() data.Order {
	return data.Order{
		ID:         uuid.MustParse("8f14e45f-ceea-467f-a0e6-1b7a2d0c9d11"),
		Status:     data.PaidStatus,
		TotalPrice: decimal.RequireFromString("250"),
		UserID:     uuid.New(),
	}
}

func TestNotifyStatusSendsRenderedEmail(t *testing.T) {
	contacts := &fakeContacts{order: testOrder(), recipient: strPtr("buyer@example.com")}
	sender := &fakeSender{enabled: true}
	n := New(Config{}, contacts, sender, logging.NewNopLogger())

	outcome := n.NotifyStatus(context.Background(), contacts.order.ID, data.PaidStatus)

	assert.Equal(t, Sent, outcome)
	require.Len(t, sender.sent, 1)
	email := sender.sent[0]
	assert.Equal(t, "buyer@example.com", email.recipient)
	assert.Equal(t, "✅ Tu pago ha sido confirmado", email.subject)
	assert.Contains(t, email.body, "¡Pago confirmado!")
	assert.Contains(t, email.body, "Total: $250.00 MXN")
	assert.Contains(t, email.body, "Pedido: 8f14e45f-ceea-467f-a0e6-1b7a2d0c9d11")
	assert.Contains(t, email.body, "background:#22c55e")
	assert.False(t, email.deadline.IsZero())
}

func TestNotifyStatusSkips(t *testing.T) {
	t.Run("sender disabled", func(t *testing.T) {
		contacts := &fakeContacts{order: testOrder(), recipient: strPtr("buyer@example.com")}
		sender := &fakeSender{enabled: false}
		n := New(Config{}, contacts, sender, logging.NewNopLogger())

		assert.Equal(t, SkippedDisabled, n.NotifyStatus(context.Background(), uuid.New(), data.PaidStatus))
		assert.Zero(t, contacts.calls)
		assert.Empty(t, sender.sent)
	})

	t.Run("no recipient", func(t *testing.T) {
		contacts := &fakeContacts{order: testOrder()}
		sender := &fakeSender{enabled: true}
		n := New(Config{}, contacts, sender, logging.NewNopLogger())

		assert.Equal(t, SkippedNoRecipient, n.NotifyStatus(context.Background(), uuid.New(), data.FailedStatus))
		assert.Empty(t, sender.sent)
	})

	t.Run("no template for status", func(t *testing.T) {
		contacts := &fakeContacts{order: testOrder(), recipient: strPtr("buyer@example.com")}
		sender := &fakeSender{enabled: true}
		n := New(Config{}, contacts, sender, logging.NewNopLogger())

		assert.Equal(t, SkippedNoTemplate, n.NotifyStatus(context.Background(), uuid.New(), data.PendingStatus))
		assert.Empty(t, sender.sent)
	})
}

func TestNotifyStatusSwallowsFailures(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		contacts := &fakeContacts{err: data.ErrStoreUnavailable}
		sender := &fakeSender{enabled: true}
		n := New(Config{}, contacts, sender, logging.NewNopLogger())

		assert.Equal(t, Failed, n.NotifyStatus(context.Background(), uuid.New(), data.PaidStatus))
		assert.Empty(t, sender.sent)
	})

	t.Run("delivery failure", func(t *testing.T) {
		contacts := &fakeContacts{order: testOrder(), recipient: strPtr("buyer@example.com")}
		sender := &fakeSender{enabled: true, err: errors.New("smtp down")}
		n := New(Config{}, contacts, sender, logging.NewNopLogger())

		assert.Equal(t, Failed, n.NotifyStatus(context.Background(), uuid.New(), data.ExpiredStatus))
		assert.Len(t, sender.sent, 1)
	})
}

func TestNotifyStatusOutlivesCanceledRequest(t *testing.T) {
	contacts := &fakeContacts{order: testOrder(), recipient: strPtr("buyer@example.com")}
	sender := &fakeSender{enabled: true}
	n := New(Config{Timeout: time.Second}, contacts, sender, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, Sent, n.NotifyStatus(ctx, contacts.order.ID, data.PaidStatus))
	require.Len(t, sender.sent, 1)
	assert.NoError(t, sender.sent[0].ctxErr)
}

func TestRenderEscapesAndFormats(t *testing.T) {
	orderID := uuid.New()
	total := decimal.RequireFromString("1234.5")

	subject, body, ok, err := render(data.ExpiredStatus, orderID, &total)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "⏰ Tu sesión de pago ha expirado", subject)
	assert.Contains(t, body, "Total: $1234.50 MXN")

	_, body, ok, err = render(data.FailedStatus, orderID, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, body, "Total:")
}
