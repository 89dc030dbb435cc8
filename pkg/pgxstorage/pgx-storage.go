package pgxstorage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DBFactory interface {
	Create(ctx context.Context) (*pgxpool.Pool, error)
}

// DBStorage is a thin wrapper over a pgx pool. Every statement it runs is
// auto-committed; conditional writes are expressed as single statements.
type DBStorage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dbFactory DBFactory) (*DBStorage, error) {
	pool, err := dbFactory.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return &DBStorage{
		pool: pool,
	}, nil
}

func (s *DBStorage) Close() {
	s.pool.Close()
}

func (s *DBStorage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *DBStorage) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, query, args...) //nolint:wrapcheck // unnecessary
}

func (s *DBStorage) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, query, args...)
}

// QueryValue scans the single row produced by query into dest.
// pgx.ErrNoRows is returned as is so callers can tell a miss from a failure.
func (s *DBStorage) QueryValue(ctx context.Context, query string, args []any, dest []any) error {
	return s.pool.QueryRow(ctx, query, args...).Scan(dest...) //nolint:wrapcheck // unnecessary
}
