package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/internal/domains/booking/model"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/shared/logger"
	"roost/shared/timezone"
)

const (
	selectColumns = "id, property_id, guest_id, start_date, end_date, status, guests, nightly_rate, cleaning_fee, service_fee, discount, total_amount, currency, cancel_reason, idempotency_key, created_at, modified_at, created_by, modified_by"
)

type Booking interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error)
	ListByGuest(ctx context.Context, guestID string, limit, offset int) ([]model.Booking, error)
	CountByGuest(ctx context.Context, guestID string) (int, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, from []model.Status, to model.Status, reason string) (bool, error)
	ListExpiredPending(ctx context.Context, olderThan time.Time, limit int) ([]model.Booking, error)
	ListFinishedStays(ctx context.Context, endedBefore time.Time, limit int) ([]model.Booking, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

// InsertTx inserts the booking row inside the reservation transaction. The
// caller must already hold the availability ledger's property lock; the
// exclusion constraint on the table is only a backstop, so a violation here
// means the ledger check was bypassed.
func (repo *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".InsertTx")
	defer scope.End()

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (:id, :property_id, :guest_id, :start_date, :end_date, :status, :guests, :nightly_rate, :cleaning_fee, :service_fee, :discount, :total_amount, :currency, :cancel_reason, :idempotency_key, :created_at, :modified_at, :created_by, :modified_by)`,
		model.TableName, selectColumns)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := tx.NamedExecContext(ctx, query, booking)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeExclusionViolation {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			// Should never happen: the ledger serializes reservations per
			// property before this insert runs.
			return failure.InternalError(fmt.Errorf("availability invariant violated for property %s: %w", booking.PropertyID, err)) //nolint:wrapcheck
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) GetByID(ctx context.Context, id string) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".GetByID")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var booking model.Booking

	err := repo.db.Read.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Booking{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return booking, nil
}

// GetByIDForUpdate locks the booking row for the duration of the transaction
// so concurrent webhook deliveries for the same booking apply sequentially.
func (repo *repositoryImpl) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".GetByIDForUpdate")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 FOR UPDATE", selectColumns, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var booking model.Booking

	err := tx.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Booking{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return booking, nil
}

func (repo *repositoryImpl) ListByGuest(ctx context.Context, guestID string, limit, offset int) ([]model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ListByGuest")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE guest_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", selectColumns, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	bookings := []model.Booking{}

	err := repo.db.Read.SelectContext(ctx, &bookings, query, guestID, limit, offset)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return bookings, nil
}

func (repo *repositoryImpl) CountByGuest(ctx context.Context, guestID string) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".CountByGuest")
	defer scope.End()

	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE guest_id = $1", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	count := 0

	err := repo.db.Read.GetContext(ctx, &count, query, guestID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count data (%s): %w", model.EntityName, err)
	}

	return count, nil
}

// UpdateStatusTx performs a guarded status transition. The update only applies
// when the current status is in from, which makes every transition idempotent
// per booking: a row already moved by a concurrent actor is simply not
// matched, and the caller observes false.
func (repo *repositoryImpl) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, from []model.Status, to model.Status, reason string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".UpdateStatusTx")
	defer scope.End()

	fromStatuses := make([]string, len(from))
	for i, status := range from {
		fromStatuses[i] = string(status)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET status = $1, cancel_reason = $2, modified_at = $3 WHERE id = $4 AND status = ANY($5)",
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := tx.ExecContext(ctx, query, to, reason, timezone.Now(), id, pq.Array(fromStatuses))
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	return affected > 0, nil
}

func (repo *repositoryImpl) ListExpiredPending(ctx context.Context, olderThan time.Time, limit int) ([]model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ListExpiredPending")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC LIMIT $3",
		selectColumns, model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	bookings := []model.Booking{}

	err := repo.db.Read.SelectContext(ctx, &bookings, query, model.StatusPendingPayment, olderThan, limit)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return bookings, nil
}

func (repo *repositoryImpl) ListFinishedStays(ctx context.Context, endedBefore time.Time, limit int) ([]model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ListFinishedStays")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE status = $1 AND end_date <= $2 ORDER BY end_date ASC LIMIT $3",
		selectColumns, model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	bookings := []model.Booking{}

	err := repo.db.Read.SelectContext(ctx, &bookings, query, model.StatusConfirmed, endedBefore, limit)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return bookings, nil
}
