package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/internal/domains/idempotency/model"
	"roost/shared/constant"
	"roost/shared/logger"
	"roost/shared/timezone"
)

// ErrDuplicateKey signals that a record for (key, guest) already exists; the
// caller decides between replay, takeover and conflict.
var ErrDuplicateKey = errors.New("idempotency record already exists")

type Idempotency interface {
	Insert(ctx context.Context, record model.Record) error
	Get(ctx context.Context, key, guestID string) (model.Record, error)
	Takeover(ctx context.Context, key, guestID string, staleBefore time.Time, expiresAt time.Time) (bool, error)
	Complete(ctx context.Context, key, guestID, bookingID string, responseBody []byte) error
	Fail(ctx context.Context, key, guestID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Idempotency {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (repo *repositoryImpl) Insert(ctx context.Context, record model.Record) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.Insert")
	defer scope.End()

	query := fmt.Sprintf(`INSERT INTO %s (idempotency_key, guest_id, fingerprint, state, booking_id, response_body, created_at, expires_at)
		VALUES (:idempotency_key, :guest_id, :fingerprint, :state, :booking_id, :response_body, :created_at, :expires_at)`,
		model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.NamedExecContext(ctx, query, record)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
			return ErrDuplicateKey
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) Get(ctx context.Context, key, guestID string) (model.Record, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.Get")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT idempotency_key, guest_id, fingerprint, state, booking_id, response_body, created_at, expires_at FROM %s WHERE idempotency_key = $1 AND guest_id = $2",
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var record model.Record

	// Reads go to the write connection: a retry must observe the record its
	// original attempt just inserted, without replica lag.
	err := repo.db.Write.GetContext(ctx, &record, query, key, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Record{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return record, nil
}

// Takeover resets a failed or abandoned in-flight record so a retry can
// proceed as if fresh. Only one concurrent retry wins the conditional update.
func (repo *repositoryImpl) Takeover(ctx context.Context, key, guestID string, staleBefore time.Time, expiresAt time.Time) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.Takeover")
	defer scope.End()

	query := fmt.Sprintf(`UPDATE %s SET state = $1, created_at = $2, expires_at = $3
		WHERE idempotency_key = $4 AND guest_id = $5
		AND (state = $6 OR (state = $7 AND created_at < $8))`,
		model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := repo.db.Write.ExecContext(ctx, query,
		model.StateInFlight, timezone.Now(), expiresAt,
		key, guestID,
		model.StateFailed, model.StateInFlight, staleBefore,
	)
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

func (repo *repositoryImpl) Complete(ctx context.Context, key, guestID, bookingID string, responseBody []byte) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.Complete")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %s SET state = $1, booking_id = $2, response_body = $3 WHERE idempotency_key = $4 AND guest_id = $5 AND state = $6",
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.ExecContext(ctx, query, model.StateCompleted, bookingID, responseBody, key, guestID, model.StateInFlight)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) Fail(ctx context.Context, key, guestID string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.Fail")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %s SET state = $1 WHERE idempotency_key = $2 AND guest_id = $3 AND state = $4",
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.ExecContext(ctx, query, model.StateFailed, key, guestID, model.StateInFlight)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".idempotency.DeleteExpired")
	defer scope.End()

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < $1", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := repo.db.Write.ExecContext(ctx, query, before)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to delete data (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	return affected, nil
}
