package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

func closeBody(ctx context.Context, body io.ReadCloser, logger *logging.ZapLogger) {
	err := body.Close()
	if err != nil {
		logger.ErrorCtx(ctx, "failed to close body", zap.Error(err))
	}
}

func writeResponseJSON(
	ctx context.Context,
	w http.ResponseWriter,
	statusCode int,
	responseItem any,
	logger *logging.ZapLogger,
) {
	res, err := json.Marshal(responseItem)
	if err != nil {
		logger.ErrorCtx(ctx, "error marshalling response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(res); err != nil {
		logger.ErrorCtx(ctx, "error writing response", zap.Error(err))
	}
}
