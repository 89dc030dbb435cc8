package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"payment-webhook/cmd/payment-webhook/config"
	"payment-webhook/internal/webhook"
	"payment-webhook/internal/webhook/data/database"
	"payment-webhook/internal/webhook/data/dbrepository"
	"payment-webhook/internal/webhook/emailsender"
	"payment-webhook/internal/webhook/events"
	"payment-webhook/internal/webhook/metrics"
	"payment-webhook/internal/webhook/notifier"
	"payment-webhook/internal/webhook/service"
	"payment-webhook/internal/webhook/verifier"
	"payment-webhook/pkg/logging"
	"payment-webhook/pkg/pgxstorage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var logOptions []logging.Option
	if cfg.LogLevel == zapcore.DebugLevel {
		logOptions = append(logOptions, logging.WithoutSampling())
	}
	logger, err := logging.NewZapLogger(cfg.LogLevel, logOptions...)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	dbFactory := database.NewPgxDatabaseFactory(cfg.DB, logger)
	storage, err := pgxstorage.New(rootCtx, dbFactory)
	if err != nil {
		logger.ErrorCtx(rootCtx, "Failed to open order store", zap.Error(err))
		return
	}
	defer storage.Close()
	repository := dbrepository.New(storage, logger)

	signatureVerifier := verifier.New(cfg.Verifier)
	if !signatureVerifier.Configured() {
		logger.WarnCtx(rootCtx, "Webhook secret is not configured, every delivery will be rejected")
	}

	sender := emailsender.NewResend(cfg.Email, logger)
	if !sender.Enabled() {
		logger.WarnCtx(rootCtx, "Resend API key is not configured, customer notifications are disabled")
	}

	server := webhook.New(cfg.Server, webhook.Dependencies{
		Verifier:   signatureVerifier,
		Classifier: events.NewClassifier(),
		Reconciler: service.NewReconciler(cfg.Reconciler, repository, logger),
		Notifier:   notifier.New(cfg.Notifier, repository, sender, logger),
		Health:     repository,
		Metrics:    metrics.NewRegistry(),
	}, logger)

	logger.InfoCtx(rootCtx, "Starting server",
		zap.String("address", cfg.Server.ServerAddress),
		zap.String("latePaymentPolicy", string(cfg.Reconciler.LatePaymentPolicy)),
	)
	if err := run(rootCtx, cfg, server, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

func run(rootCtx context.Context, cfg *config.Config, server *webhook.Server, logger *logging.ZapLogger) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout*2)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
