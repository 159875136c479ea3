package availability

//go:generate go run go.uber.org/mock/mockgen -source=./ledger.go -destination=./mocks/ledger_mock.go -package=mocks

import (
	"fmt"

	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"roost/infras/otel"
	bookingModel "roost/internal/domains/booking/model"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/shared/logger"
)

const (
	otelScopeName = "ledger"
)

// Ledger is the single source of truth for date-range conflict detection.
// Holds are derived state: the booking row itself is the hold, present exactly
// while its status is pending_payment or confirmed. All reservations and
// releases must route through the ledger's per-property serialization point;
// no component may cache availability for correctness decisions.
type Ledger interface {
	// Reserve must be called inside the same transaction that inserts the
	// booking row. It serializes on the property and fails with a conflict if
	// any non-terminal booking overlaps [start, end).
	Reserve(ctx context.Context, tx *sqlx.Tx, propertyID string, start, end time.Time) error

	// Release must be called inside the same transaction that moves a booking
	// out of a hold-bearing status. It acquires the property serialization
	// point so the status flip cannot interleave with a concurrent Reserve.
	// Releasing an already-released or unknown hold is a no-op.
	Release(ctx context.Context, tx *sqlx.Tx, propertyID string) error
}

type ledgerImpl struct {
	otel otel.Otel
}

func New(otel otel.Otel) Ledger {
	return &ledgerImpl{
		otel: otel,
	}
}

// lockProperty takes a transaction-scoped advisory lock keyed by property id.
// Two transactions reserving or releasing on the same property queue behind
// each other; the second observes the first's committed rows once it acquires
// the lock. The lock is dropped automatically at commit/rollback.
func (l *ledgerImpl) lockProperty(ctx context.Context, tx *sqlx.Tx, propertyID string) error {
	query := "SELECT pg_advisory_xact_lock(hashtext($1))"

	if _, err := tx.ExecContext(ctx, query, propertyID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to acquire property lock: %w", err)
	}

	return nil
}

func (l *ledgerImpl) Reserve(ctx context.Context, tx *sqlx.Tx, propertyID string, start, end time.Time) (err error) {
	ctx, scope := l.otel.NewScope(ctx, otelScopeName, otelScopeName+".Reserve")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = l.lockProperty(ctx, tx, propertyID); err != nil {
		return err
	}

	// Half-open interval intersection, the SQL form of bookingModel.Overlaps:
	// [s1,e1) and [s2,e2) conflict iff s1 < e2 AND s2 < e1. Back-to-back
	// stays (end == start) never conflict.
	query := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE property_id = $1 AND status IN ($2, $3) AND start_date < $5 AND $4 < end_date)",
		bookingModel.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var conflict bool

	err = tx.GetContext(ctx, &conflict, query,
		propertyID,
		bookingModel.StatusPendingPayment,
		bookingModel.StatusConfirmed,
		start,
		end,
	)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to check availability: %w", err)
	}

	if conflict {
		log.Info().
			Str("propertyID", propertyID).
			Time("start", start).
			Time("end", end).
			Msg("reservation conflicts with an existing hold")

		return failure.Conflict("dates unavailable") //nolint:wrapcheck
	}

	return nil
}

func (l *ledgerImpl) Release(ctx context.Context, tx *sqlx.Tx, propertyID string) (err error) {
	ctx, scope := l.otel.NewScope(ctx, otelScopeName, otelScopeName+".Release")
	defer scope.End()
	defer scope.TraceIfError(err)

	return l.lockProperty(ctx, tx, propertyID)
}
