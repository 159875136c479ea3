package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/internal/domains/payment/model"
	"roost/shared/constant"
	"roost/shared/logger"
	"roost/shared/timezone"
)

type Payment interface {
	InsertRecord(ctx context.Context, record model.Record) error
	GetRecordByIntentID(ctx context.Context, intentID string) (model.Record, error)
	GetRecordByBookingID(ctx context.Context, bookingID string) (model.Record, error)
	UpdateRecordStatus(ctx context.Context, intentID, status string) error
	// InsertEvent records a provider event id. It returns false when the event
	// was already processed; the caller must then produce no side effects.
	InsertEvent(ctx context.Context, eventID string) (bool, error)
	// DeleteEvent removes a recorded event id. Called when the transition for
	// a freshly inserted event fails to commit, so the provider's redelivery
	// is processed instead of being dropped as a duplicate.
	DeleteEvent(ctx context.Context, eventID string) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (repo *repositoryImpl) InsertRecord(ctx context.Context, record model.Record) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.InsertRecord")
	defer scope.End()

	query := fmt.Sprintf(`INSERT INTO %s (id, booking_id, provider, intent_id, status, amount, currency, created_at, modified_at, created_by, modified_by)
		VALUES (:id, :booking_id, :provider, :intent_id, :status, :amount, :currency, :created_at, :modified_at, :created_by, :modified_by)`,
		model.RecordTableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.NamedExecContext(ctx, query, record)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) GetRecordByIntentID(ctx context.Context, intentID string) (model.Record, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.GetRecordByIntentID")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT id, booking_id, provider, intent_id, status, amount, currency, created_at, modified_at, created_by, modified_by FROM %s WHERE intent_id = $1",
		model.RecordTableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var record model.Record

	err := repo.db.Read.GetContext(ctx, &record, query, intentID)
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

func (repo *repositoryImpl) GetRecordByBookingID(ctx context.Context, bookingID string) (model.Record, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.GetRecordByBookingID")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT id, booking_id, provider, intent_id, status, amount, currency, created_at, modified_at, created_by, modified_by FROM %s WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1",
		model.RecordTableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var record model.Record

	err := repo.db.Read.GetContext(ctx, &record, query, bookingID)
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

func (repo *repositoryImpl) UpdateRecordStatus(ctx context.Context, intentID, status string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.UpdateRecordStatus")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %s SET status = $1, modified_at = $2 WHERE intent_id = $3",
		model.RecordTableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.ExecContext(ctx, query, status, timezone.Now(), intentID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) InsertEvent(ctx context.Context, eventID string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.InsertEvent")
	defer scope.End()

	query := fmt.Sprintf(
		"INSERT INTO %s (event_id, received_at) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		model.EventTableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := repo.db.Write.ExecContext(ctx, query, eventID, timezone.Now())
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to insert data (webhook event): %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to read affected rows (webhook event): %w", err)
	}

	return affected > 0, nil
}

func (repo *repositoryImpl) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.DeleteEvent")
	defer scope.End()

	query := fmt.Sprintf("DELETE FROM %s WHERE event_id = $1", model.EventTableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.db.Write.ExecContext(ctx, query, eventID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to delete data (webhook event): %w", err)
	}

	return nil
}
