package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"payment-webhook/internal/webhook/handlers"
	"payment-webhook/internal/webhook/metrics"
	"payment-webhook/internal/webhook/middleware"
	"payment-webhook/pkg/logging"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
}

// Dependencies groups the collaborators the router wires into handlers.
type Dependencies struct {
	Verifier   handlers.WebhookVerifier
	Classifier handlers.EventClassifier
	Reconciler handlers.OrderReconciler
	Notifier   handlers.StatusNotifier
	Health     handlers.HealthChecker
	Metrics    *metrics.Registry
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

func New(cfg Config, deps Dependencies, logger *logging.ZapLogger) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           createMux(deps, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func createMux(deps Dependencies, logger *logging.ZapLogger) *chi.Mux {
	webhookHandler := handlers.NewWebhookHandler(
		deps.Verifier,
		deps.Classifier,
		deps.Reconciler,
		deps.Notifier,
		deps.Metrics,
		logger,
	)
	healthHandler := handlers.NewHealthHandler(deps.Health, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewLoggerContext().CreateHandler)
	router.Use(middleware.NewPanicRecover(logger).CreateHandler)
	router.Use(middleware.NewCORS().CreateHandler)

	router.Post("/webhook", webhookHandler.ServeHTTP)
	router.Get("/healthz", healthHandler.ServeHTTP)
	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return router
}
