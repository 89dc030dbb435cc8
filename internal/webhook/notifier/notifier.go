// Package notifier sends best-effort order status emails. Nothing it does can
// fail the webhook: every error is logged and swallowed.
package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"payment-webhook/internal/webhook/data"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

type Outcome string

const (
	Sent               Outcome = "sent"
	Failed             Outcome = "failed"
	SkippedDisabled    Outcome = "skipped_disabled"
	SkippedNoRecipient Outcome = "skipped_no_recipient"
	SkippedNoTemplate  Outcome = "skipped_no_template"
)

type OrderContactRepository interface {
	GetOrderWithUser(ctx context.Context, orderID uuid.UUID) (data.Order, *string, error)
}

type EmailSender interface {
	Enabled() bool
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

type Config struct {
	// Timeout bounds the contact lookup and the delivery attempt together. Keep
	// it well under the provider's webhook response deadline.
	Timeout time.Duration
}

type Notifier struct {
	repository OrderContactRepository
	sender     EmailSender
	cfg        Config
	logger     *logging.ZapLogger
}

func New(cfg Config, repository OrderContactRepository, sender EmailSender, logger *logging.ZapLogger) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Notifier{
		repository: repository,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
	}
}

// NotifyStatus tells the order's owner that the order reached status. It makes
// at most one delivery attempt and never returns an error.
func (n *Notifier) NotifyStatus(ctx context.Context, orderID uuid.UUID, status data.Status) Outcome {
	ctx = logging.WithContextFields(ctx, zap.Stringer("orderID", orderID), zap.String("status", string(status)))

	if !n.sender.Enabled() {
		n.logger.DebugCtx(ctx, "email sender not configured, skipping notification")
		return SkippedDisabled
	}

	// The order is already committed; the caller going away must not cut the
	// notification short, only our own timeout may.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.cfg.Timeout)
	defer cancel()

	order, recipient, err := n.repository.GetOrderWithUser(ctx, orderID)
	if err != nil {
		if errors.Is(err, data.ErrOrderNotFound) {
			n.logger.WarnCtx(ctx, "order vanished before notification")
			return SkippedNoRecipient
		}
		n.logger.ErrorCtx(ctx, "failed to look up notification recipient", zap.Error(err))
		return Failed
	}
	if recipient == nil {
		n.logger.DebugCtx(ctx, "order owner has no email address, skipping notification")
		return SkippedNoRecipient
	}

	total := order.TotalPrice
	subject, body, ok, err := render(status, orderID, &total)
	if err != nil {
		n.logger.ErrorCtx(ctx, "failed to render notification", zap.Error(err))
		return Failed
	}
	if !ok {
		n.logger.DebugCtx(ctx, "no email template for status")
		return SkippedNoTemplate
	}

	if err := n.sender.Send(ctx, *recipient, subject, body); err != nil {
		n.logger.ErrorCtx(ctx, "failed to send order status email", zap.Error(err))
		return Failed
	}
	n.logger.InfoCtx(ctx, "order status email sent")
	return Sent
}
