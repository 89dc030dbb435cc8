package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"payment-webhook/internal/common/webhookprotocol"
	"payment-webhook/internal/webhook/data"
	"payment-webhook/internal/webhook/events"
	"payment-webhook/internal/webhook/metrics"
	"payment-webhook/internal/webhook/notifier"
	"payment-webhook/internal/webhook/service"
	"payment-webhook/internal/webhook/verifier"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

const DefaultMaxBodyBytes = 1 << 20

const (
	outcomeMisconfigured = "misconfigured"
	outcomeUnauthorized  = "unauthorized"
	outcomeBadRequest    = "bad_request"
	outcomeIgnored       = "ignored"
	outcomeApplied       = "applied"
	outcomeNoop          = "noop"
	outcomeNotFound      = "order_not_found"
	outcomeConflict      = "conflict"
	outcomeStoreError    = "store_error"
	kindUnknown          = "unknown"
)

type WebhookVerifier interface {
	Verify(body []byte, header string) error
}

type EventClassifier interface {
	Classify(body []byte) (events.Event, error)
}

type OrderReconciler interface {
	Reconcile(ctx context.Context, event events.Event) (service.Result, error)
}

type StatusNotifier interface {
	NotifyStatus(ctx context.Context, orderID uuid.UUID, status data.Status) notifier.Outcome
}

// WebhookHandler serves POST /webhook: verify, classify, reconcile, notify.
// Any failure before reconciliation completes is answered with an error
// status; notification never changes the response.
type WebhookHandler struct {
	verifier     WebhookVerifier
	classifier   EventClassifier
	reconciler   OrderReconciler
	notifier     StatusNotifier
	metrics      *metrics.Registry
	logger       *logging.ZapLogger
	maxBodyBytes int64
}

func NewWebhookHandler(
	verifier WebhookVerifier,
	classifier EventClassifier,
	reconciler OrderReconciler,
	notifier StatusNotifier,
	metrics *metrics.Registry,
	logger *logging.ZapLogger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:     verifier,
		classifier:   classifier,
		reconciler:   reconciler,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	defer closeBody(ctx, r.Body, h.logger)

	kind, outcome := kindUnknown, outcomeBadRequest
	defer func() {
		h.metrics.Events.WithLabelValues(kind, outcome).Inc()
		h.metrics.LatencySec.Observe(time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.logger.WarnCtx(ctx, "failed to read webhook body", zap.Error(err))
		h.reject(ctx, w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(verifier.SignatureHeader)); err != nil {
		switch {
		case errors.Is(err, verifier.ErrSecretNotConfigured):
			outcome = outcomeMisconfigured
			h.logger.ErrorCtx(ctx, "webhook secret not configured")
			h.reject(ctx, w, http.StatusInternalServerError, "webhook secret not configured")
		default:
			outcome = outcomeUnauthorized
			h.logger.WarnCtx(ctx, "webhook signature verification failed", zap.Error(err))
			h.reject(ctx, w, http.StatusBadRequest, "invalid signature")
		}
		return
	}

	event, err := h.classifier.Classify(body)
	if err != nil {
		h.logger.WarnCtx(ctx, "malformed webhook event", zap.Error(err))
		h.reject(ctx, w, http.StatusBadRequest, "malformed event")
		return
	}
	kind = string(event.Kind())
	ctx = logging.WithContextFields(ctx, zap.String("eventID", event.ID()), zap.String("kind", kind))

	if ignored, ok := event.(events.Ignored); ok {
		outcome = outcomeIgnored
		h.logger.DebugCtx(ctx, "ignoring webhook event", zap.String("type", ignored.Type))
		h.acknowledge(ctx, w)
		return
	}

	res, err := h.reconciler.Reconcile(ctx, event)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			outcome = outcomeNotFound
			h.logger.WarnCtx(ctx, "order referenced by event not found", zap.Error(err))
			h.acknowledge(ctx, w)
		case errors.Is(err, service.ErrConflictingState):
			outcome = outcomeConflict
			h.logger.WarnCtx(ctx, "event conflicts with settled order", zap.Error(err))
			h.acknowledge(ctx, w)
		default:
			outcome = outcomeStoreError
			h.logger.ErrorCtx(ctx, "failed to reconcile order", zap.Error(err))
			h.reject(ctx, w, http.StatusInternalServerError, "failed to process event")
		}
		return
	}

	if !res.Applied {
		outcome = outcomeNoop
		h.acknowledge(ctx, w)
		return
	}

	outcome = outcomeApplied
	h.metrics.Transitions.WithLabelValues(string(res.Previous), string(res.Status)).Inc()
	notified := h.notifier.NotifyStatus(ctx, res.OrderID, res.Status)
	h.metrics.Notifications.WithLabelValues(string(notified)).Inc()
	h.acknowledge(ctx, w)
}

func (h *WebhookHandler) acknowledge(ctx context.Context, w http.ResponseWriter) {
	writeResponseJSON(ctx, w, http.StatusOK, webhookprotocol.Ack{Received: true}, h.logger)
}

func (h *WebhookHandler) reject(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	writeResponseJSON(ctx, w, statusCode, webhookprotocol.Error{Error: message}, h.logger)
}
