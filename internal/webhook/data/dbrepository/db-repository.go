package dbrepository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"payment-webhook/internal/webhook/data"
	"payment-webhook/pkg/logging"

	"go.uber.org/zap"
)

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryValue(ctx context.Context, query string, args []any, dest []any) error
	Ping(ctx context.Context) error
}

type DBRepository struct {
	storage DBStorage
	logger  *logging.ZapLogger
}

func New(storage DBStorage, logger *logging.ZapLogger) *DBRepository {
	return &DBRepository{
		storage: storage,
		logger:  logger,
	}
}

//go:embed sql/select_order.sql
var selectOrderQuery string

func (db *DBRepository) FindOrderByID(ctx context.Context, orderID uuid.UUID) (data.Order, error) {
	db.logger.DebugCtx(ctx, "getting order", zap.Stringer("orderID", orderID))
	var order data.Order
	err := db.storage.QueryValue(ctx, selectOrderQuery, []any{orderID}, orderDest(&order))
	if err != nil {
		return data.Order{}, handleSQLError(err)
	}
	return order, nil
}

//go:embed sql/select_order_by_payment_reference.sql
var selectOrderByPaymentReferenceQuery string

func (db *DBRepository) FindOrderByPaymentReference(ctx context.Context, paymentReference string) (data.Order, error) {
	db.logger.DebugCtx(ctx, "getting order by payment reference", zap.String("paymentReference", paymentReference))
	var order data.Order
	err := db.storage.QueryValue(
		ctx,
		selectOrderByPaymentReferenceQuery,
		[]any{paymentReference},
		orderDest(&order),
	)
	if err != nil {
		return data.Order{}, handleSQLError(err)
	}
	return order, nil
}

//go:embed sql/compare_and_set_status.sql
var compareAndSetStatusQuery string

// CompareAndSetStatus moves the order to newStatus only while its current status
// equals expected; a nil expected skips the guard. paymentReference is written
// only if none is recorded yet. It reports whether a row was updated.
func (db *DBRepository) CompareAndSetStatus(
	ctx context.Context,
	orderID uuid.UUID,
	expected *data.Status,
	newStatus data.Status,
	paymentReference *string,
) (bool, error) {
	if !newStatus.Valid() {
		return false, fmt.Errorf("%w: %q", data.ErrInvalidStatus, newStatus)
	}
	var expectedArg *string
	if expected != nil {
		s := string(*expected)
		expectedArg = &s
	}
	tag, err := db.storage.Exec(
		ctx,
		compareAndSetStatusQuery,
		orderID,
		string(newStatus),
		expectedArg,
		paymentReference,
	)
	if err != nil {
		return false, handleSQLError(err)
	}
	return tag.RowsAffected() == 1, nil
}

//go:embed sql/select_order_with_user.sql
var selectOrderWithUserQuery string

func (db *DBRepository) GetOrderWithUser(ctx context.Context, orderID uuid.UUID) (data.Order, *string, error) {
	var (
		order data.Order
		email *string
	)
	dest := append(orderDest(&order), &email)
	err := db.storage.QueryValue(ctx, selectOrderWithUserQuery, []any{orderID}, dest)
	if err != nil {
		return data.Order{}, nil, handleSQLError(err)
	}
	if email != nil && *email == "" {
		email = nil
	}
	return order, email, nil
}

func (db *DBRepository) Ping(ctx context.Context) error {
	if err := db.storage.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", data.ErrStoreUnavailable, err)
	}
	return nil
}

func orderDest(order *data.Order) []any {
	return []any{
		&order.ID,
		&order.Status,
		&order.PaymentReference,
		&order.TotalPrice,
		&order.UserID,
		&order.CreatedAt,
	}
}

func handleSQLError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return data.ErrOrderNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23514: check_violation, the status column rejected the value.
		if pgErr.Code == "23514" {
			return fmt.Errorf("%w: %s", data.ErrInvalidStatus, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", data.ErrStoreUnavailable, err)
}
