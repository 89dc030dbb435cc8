package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"payment-webhook/internal/webhook/data"
	"payment-webhook/internal/webhook/events"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

const (
	defaultStoreTimeout   = 5 * time.Second
	defaultMaxCASAttempts = 3
)

// LatePaymentPolicy decides what a completed payment does to an order that
// already failed or expired.
type LatePaymentPolicy string

const (
	// OverrideLatePayment marks the order paid: the provider captured the money.
	OverrideLatePayment LatePaymentPolicy = "override"
	// RejectLatePayment leaves the order untouched and reports ErrConflictingState.
	RejectLatePayment LatePaymentPolicy = "reject"
)

func ParseLatePaymentPolicy(text string) (LatePaymentPolicy, error) {
	switch policy := LatePaymentPolicy(text); policy {
	case OverrideLatePayment, RejectLatePayment:
		return policy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, text)
}

type OrderRepository interface {
	FindOrderByID(ctx context.Context, orderID uuid.UUID) (data.Order, error)
	FindOrderByPaymentReference(ctx context.Context, paymentReference string) (data.Order, error)
	CompareAndSetStatus(
		ctx context.Context,
		orderID uuid.UUID,
		expected *data.Status,
		newStatus data.Status,
		paymentReference *string,
	) (bool, error)
}

type Config struct {
	LatePaymentPolicy LatePaymentPolicy
	StoreTimeout      time.Duration
	MaxCASAttempts    int
}

// Result describes what reconciling one event did. Applied is false for every
// no-op, so a redelivered event never looks like a fresh transition.
type Result struct {
	OrderID  uuid.UUID
	Previous data.Status
	Status   data.Status
	Applied  bool
}

type Reconciler struct {
	repository OrderRepository
	cfg        Config
	logger     *logging.ZapLogger
}

func NewReconciler(cfg Config, repository OrderRepository, logger *logging.ZapLogger) *Reconciler {
	if cfg.LatePaymentPolicy == "" {
		cfg.LatePaymentPolicy = OverrideLatePayment
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.MaxCASAttempts <= 0 {
		cfg.MaxCASAttempts = defaultMaxCASAttempts
	}
	return &Reconciler{
		repository: repository,
		cfg:        cfg,
		logger:     logger,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, event events.Event) (Result, error) {
	switch e := event.(type) {
	case events.PaymentCompleted:
		return r.PaymentCompleted(ctx, e.OrderID, e.PaymentReference)
	case events.PaymentFailed:
		return r.PaymentFailed(ctx, e.PaymentReference, e.FailureMessage)
	case events.PaymentSessionExpired:
		return r.PaymentSessionExpired(ctx, e.OrderID)
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, event.Kind())
}

func (r *Reconciler) PaymentCompleted(ctx context.Context, orderID uuid.UUID, paymentReference string) (Result, error) {
	var ref *string
	if paymentReference != "" {
		ref = &paymentReference
	}
	return r.transition(
		ctx,
		func(ctx context.Context) (data.Order, error) {
			return r.repository.FindOrderByID(ctx, orderID)
		},
		data.PaidStatus,
		ref,
	)
}

// PaymentFailed resolves the order through the payment reference: failure
// events carry the payment intent, not the order. An unknown reference means the
// payment never got linked to an order and is acknowledged as a no-op.
func (r *Reconciler) PaymentFailed(ctx context.Context, paymentReference string, reason string) (Result, error) {
	res, err := r.transition(
		ctx,
		func(ctx context.Context) (data.Order, error) {
			return r.repository.FindOrderByPaymentReference(ctx, paymentReference)
		},
		data.FailedStatus,
		nil,
	)
	if errors.Is(err, ErrOrderNotFound) {
		r.logger.InfoCtx(ctx, "no order linked to failed payment", zap.String("paymentReference", paymentReference))
		return Result{}, nil
	}
	if err == nil && res.Applied {
		r.logger.InfoCtx(
			ctx,
			"order marked as failed",
			zap.Stringer("orderID", res.OrderID),
			zap.String("reason", reason),
		)
	}
	return res, err
}

func (r *Reconciler) PaymentSessionExpired(ctx context.Context, orderID uuid.UUID) (Result, error) {
	return r.transition(
		ctx,
		func(ctx context.Context) (data.Order, error) {
			return r.repository.FindOrderByID(ctx, orderID)
		},
		data.ExpiredStatus,
		nil,
	)
}

type decision int

const (
	skip decision = iota
	apply
	conflict
)

func (r *Reconciler) decide(current, target data.Status) decision {
	switch {
	case current == target:
		return skip
	case current == data.PendingStatus:
		return apply
	case target == data.PaidStatus && (current == data.FailedStatus || current == data.ExpiredStatus):
		if r.cfg.LatePaymentPolicy == OverrideLatePayment {
			return apply
		}
		return conflict
	}
	return skip
}

// transition reads the order, decides, and writes with a compare-and-set on
// the status it read. When another delivery wins the race the order is read
// again and the decision is remade against the new status.
func (r *Reconciler) transition(
	ctx context.Context,
	lookup func(ctx context.Context) (data.Order, error),
	target data.Status,
	paymentReference *string,
) (Result, error) {
	for attempt := range r.cfg.MaxCASAttempts {
		order, err := r.withTimeout(ctx, lookup)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get order: %w", err)
		}
		res := Result{
			OrderID:  order.ID,
			Previous: order.Status,
			Status:   order.Status,
		}

		switch r.decide(order.Status, target) {
		case skip:
			r.logger.DebugCtx(
				ctx,
				"order already settled, skipping",
				zap.Stringer("orderID", order.ID),
				zap.String("status", string(order.Status)),
				zap.String("target", string(target)),
			)
			return res, nil
		case conflict:
			return res, fmt.Errorf(
				"%w: order %s is %s, event wants %s",
				ErrConflictingState,
				order.ID,
				order.Status,
				target,
			)
		}

		expected := order.Status
		ok, err := r.compareAndSet(ctx, order.ID, &expected, target, paymentReference)
		if err != nil {
			return Result{}, fmt.Errorf("failed to update order status: %w", err)
		}
		if ok {
			res.Status = target
			res.Applied = true
			r.logger.InfoCtx(
				ctx,
				"order status updated",
				zap.Stringer("orderID", order.ID),
				zap.String("from", string(order.Status)),
				zap.String("to", string(target)),
			)
			return res, nil
		}
		r.logger.DebugCtx(
			ctx,
			"order changed concurrently, retrying",
			zap.Stringer("orderID", order.ID),
			zap.Int("attempt", attempt+1),
		)
	}
	return Result{}, ErrConcurrentUpdate
}

func (r *Reconciler) withTimeout(
	ctx context.Context,
	lookup func(ctx context.Context) (data.Order, error),
) (data.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StoreTimeout)
	defer cancel()
	return lookup(ctx)
}

func (r *Reconciler) compareAndSet(
	ctx context.Context,
	orderID uuid.UUID,
	expected *data.Status,
	target data.Status,
	paymentReference *string,
) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StoreTimeout)
	defer cancel()
	return r.repository.CompareAndSetStatus(ctx, orderID, expected, target, paymentReference)
}
