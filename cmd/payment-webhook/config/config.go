package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"payment-webhook/internal/webhook"
	"payment-webhook/internal/webhook/data/database"
	"payment-webhook/internal/webhook/emailsender"
	"payment-webhook/internal/webhook/notifier"
	"payment-webhook/internal/webhook/service"
	"payment-webhook/internal/webhook/verifier"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap/zapcore"
)

const (
	serverAddressFlag         = "a"
	serverAddressEnv          = "RUN_ADDRESS"
	serverAddressDefault      = "localhost:8080"
	dbConnectionStringFlag    = "d"
	dbConnectionStringEnv     = "DATABASE_URI"
	dbConnectionStringDefault = ""
	webhookSecretFlag         = "s"
	webhookSecretEnv          = "STRIPE_WEBHOOK_SECRET"
	webhookSecretDefault      = ""
	resendAPIKeyFlag          = "k"
	resendAPIKeyEnv           = "RESEND_API_KEY"
	resendAPIKeyDefault       = ""
	notifyFromFlag            = "f"
	notifyFromEnv             = "NOTIFY_FROM"
	notifyFromDefault         = "Salud y Felicidad <ventas@saludfelicidad.store>"
	latePaymentPolicyFlag     = "p"
	latePaymentPolicyEnv      = "LATE_PAYMENT_POLICY"
	latePaymentPolicyDefault  = string(service.OverrideLatePayment)
	logLevelFlag              = "l"
	logLevelEnv               = "LOG_LEVEL"
	logLevelDefault           = "info"
)

type Config struct {
	Server     webhook.Config
	DB         database.Config
	Verifier   verifier.Config
	Reconciler service.Config
	Email      emailsender.Config
	Notifier   notifier.Config
	LogLevel   zapcore.Level
}

func Load() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:], os.LookupEnv)
}

func load(fs *flag.FlagSet, args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	serverAddress := fs.String(
		serverAddressFlag,
		serverAddressDefault,
		"Server address host:port",
	)

	dbConnectionString := fs.String(
		dbConnectionStringFlag,
		dbConnectionStringDefault,
		"PostgreSQL connection string",
	)

	webhookSecret := fs.String(
		webhookSecretFlag,
		webhookSecretDefault,
		"Stripe webhook signing secret",
	)

	resendAPIKey := fs.String(
		resendAPIKeyFlag,
		resendAPIKeyDefault,
		"Resend API key, notifications are disabled when empty",
	)

	notifyFrom := fs.String(
		notifyFromFlag,
		notifyFromDefault,
		"Sender address of customer notifications",
	)

	latePaymentPolicy := fs.String(
		latePaymentPolicyFlag,
		latePaymentPolicyDefault,
		"Handling of payments for failed or expired orders: override or reject",
	)

	logLevel := fs.String(
		logLevelFlag,
		logLevelDefault,
		"Log level",
	)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	overrides := map[string]*string{
		serverAddressEnv:      serverAddress,
		dbConnectionStringEnv: dbConnectionString,
		webhookSecretEnv:      webhookSecret,
		resendAPIKeyEnv:       resendAPIKey,
		notifyFromEnv:         notifyFrom,
		latePaymentPolicyEnv:  latePaymentPolicy,
		logLevelEnv:           logLevel,
	}
	for env, dest := range overrides {
		if valStr, ok := lookupEnv(env); ok {
			*dest = valStr
		}
	}

	policy, err := service.ParseLatePaymentPolicy(*latePaymentPolicy)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: webhook.Config{
			ServerAddress:   *serverAddress,
			ShutdownTimeout: time.Second * 5,
		},
		DB: database.Config{
			ConnectionString: *dbConnectionString,
			RetryAttemptDelays: []time.Duration{
				time.Second,
				time.Second * 3,
				time.Second * 5,
			},
		},
		Verifier: verifier.Config{
			Secret:    *webhookSecret,
			Tolerance: time.Minute * 5,
		},
		Reconciler: service.Config{
			LatePaymentPolicy: policy,
			StoreTimeout:      time.Second * 5,
			MaxCASAttempts:    3,
		},
		Email: emailsender.Config{
			APIKey:  *resendAPIKey,
			From:    *notifyFrom,
			BaseURL: emailsender.DefaultBaseURL,
			Timeout: time.Second * 5,
		},
		Notifier: notifier.Config{
			Timeout: time.Second * 5,
		},
		LogLevel: level,
	}, nil
}
