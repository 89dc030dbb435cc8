package handlers

import (
	"context"
	"net/http"
	"time"

	"payment-webhook/internal/common/webhookprotocol"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checker HealthChecker
	logger  *logging.ZapLogger
}

func NewHealthHandler(checker HealthChecker, logger *logging.ZapLogger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	if err := h.checker.Ping(ctx); err != nil {
		h.logger.WarnCtx(ctx, "health check failed", zap.Error(err))
		writeResponseJSON(ctx, w, http.StatusServiceUnavailable, webhookprotocol.Error{Error: "order store unavailable"}, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
