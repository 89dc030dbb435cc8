package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"payment-webhook/pkg/logging"
	"payment-webhook/pkg/timeutils"

	"go.uber.org/zap"
)

type Config struct {
	ConnectionString   string
	RetryAttemptDelays []time.Duration
	SkipMigrations     bool
}

type PgxDatabaseFactory struct {
	cfg    Config
	logger *logging.ZapLogger
}

func NewPgxDatabaseFactory(cfg Config, logger *logging.ZapLogger) *PgxDatabaseFactory {
	return &PgxDatabaseFactory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *PgxDatabaseFactory) Create(ctx context.Context) (*pgxpool.Pool, error) {
	if f.cfg.ConnectionString == "" {
		return nil, errors.New("database connection string is empty")
	}
	// The pool connects lazily; migrate does not, so it runs only once a ping
	// has gone through.
	pool, err := pgxpool.New(ctx, f.cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create a connection pool: %w", err)
	}
	if err := f.waitReady(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if !f.cfg.SkipMigrations {
		if err := runMigrations(f.cfg.ConnectionString); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run DB migrations: %w", err)
		}
	}
	return pool, nil
}

func (f *PgxDatabaseFactory) waitReady(ctx context.Context, pool *pgxpool.Pool) error {
	delays := f.cfg.RetryAttemptDelays
	if len(delays) == 0 {
		delays = []time.Duration{0}
	}
	_, err := timeutils.Retry(
		ctx,
		delays,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, pool.Ping(ctx)
		},
		func(_ struct{}, err error) bool {
			if err != nil {
				f.logger.WarnCtx(ctx, "database is not ready yet", zap.Error(err))
				return true
			}
			return false
		},
	)
	if err != nil {
		return fmt.Errorf("database did not become ready: %w", err)
	}
	return nil
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func runMigrations(dsn string) error {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to return an iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}
