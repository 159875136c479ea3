package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/internal/domains/property/model"
	"roost/shared/constant"
	"roost/shared/logger"
)

type Property interface {
	GetForBooking(ctx context.Context, id string) (model.Property, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Property {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

// GetForBooking returns the property projection used for validation and
// pricing. A missing property yields the zero value, not an error; callers
// detect absence by an empty ID.
func (repo *repositoryImpl) GetForBooking(ctx context.Context, id string) (model.Property, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".GetForBooking")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT id, host_id, name, active, max_guests, price_per_night, cleaning_fee, currency, created_at, modified_at, created_by, modified_by FROM %s WHERE id = $1",
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var property model.Property

	err := repo.db.Read.GetContext(ctx, &property, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Property{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Property{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return property, nil
}
