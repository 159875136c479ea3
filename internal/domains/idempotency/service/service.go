package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/otel"
	"roost/internal/domains/idempotency/model"
	"roost/internal/domains/idempotency/repository"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/shared/timezone"
)

type OutcomeKind int

const (
	// Fresh means no usable prior record exists; the caller proceeds with the
	// side-effecting operation and must call Complete or Fail afterwards.
	Fresh OutcomeKind = iota + 1
	// Replay means a prior attempt with an identical payload already resolved;
	// the stored response is returned verbatim without re-running side effects.
	Replay
)

type Outcome struct {
	Kind      OutcomeKind
	BookingID string
	Response  []byte
}

type Idempotency interface {
	BeginOrReplay(ctx context.Context, key, guestID, fingerprint string) (Outcome, error)
	Complete(ctx context.Context, key, guestID, bookingID string, response []byte) error
	Fail(ctx context.Context, key, guestID string)
	PurgeExpired(ctx context.Context) (int64, error)
}

type serviceImpl struct {
	repo repository.Idempotency
	cfg  *config.Config
	otel otel.Otel
}

func New(repo repository.Idempotency, cfg *config.Config, otel otel.Otel) Idempotency {
	return &serviceImpl{
		repo: repo,
		cfg:  cfg,
		otel: otel,
	}
}

// Fingerprint produces a stable digest of the request payload so replays with
// a mutated body can be told apart from genuine retries.
func Fingerprint(payload any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal payload for fingerprinting")

		return ""
	}

	sum := sha256.Sum256(raw)

	return hex.EncodeToString(sum[:])
}

func (s *serviceImpl) BeginOrReplay(ctx context.Context, key, guestID, fingerprint string) (res Outcome, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Idempotency.BeginOrReplay")
	defer scope.End()
	defer scope.TraceIfError(err)

	record := model.Record{
		Key:         key,
		GuestID:     guestID,
		Fingerprint: fingerprint,
		State:       model.StateInFlight,
		CreatedAt:   timezone.Now(),
		ExpiresAt:   timezone.Now().Add(s.retention()),
	}

	err = s.repo.Insert(ctx, record)
	if err == nil {
		return Outcome{Kind: Fresh}, nil
	}

	if !errors.Is(err, repository.ErrDuplicateKey) {
		log.Error().Err(err).Msg("failed to create idempotency record")

		return Outcome{}, fmt.Errorf("failed to create idempotency record: %w", err)
	}

	existing, err := s.repo.Get(ctx, key, guestID)
	if err != nil {
		log.Error().Err(err).Msg("failed to read idempotency record")

		return Outcome{}, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	if existing.Key == constant.Empty {
		// The record expired and was purged between the insert and the read.
		// Treat the retry as abandoned and start over.
		return s.BeginOrReplay(ctx, key, guestID, fingerprint)
	}

	if existing.Fingerprint != fingerprint {
		return Outcome{}, failure.Conflict("idempotency key reused with a different payload") //nolint:wrapcheck
	}

	switch existing.State {
	case model.StateCompleted:
		return Outcome{
			Kind:      Replay,
			BookingID: existing.BookingID,
			Response:  existing.ResponseBody,
		}, nil

	case model.StateFailed, model.StateInFlight:
		staleBefore := timezone.Now().Add(-s.takeoverTimeout())

		taken, err := s.repo.Takeover(ctx, key, guestID, staleBefore, timezone.Now().Add(s.retention()))
		if err != nil {
			log.Error().Err(err).Msg("failed to take over idempotency record")

			return Outcome{}, fmt.Errorf("failed to take over idempotency record: %w", err)
		}

		if !taken {
			// The original attempt is still within its takeover window, or a
			// concurrent retry won the takeover. Either way this request must
			// not run side effects now.
			return Outcome{}, failure.Conflict("a request with this idempotency key is already in flight") //nolint:wrapcheck
		}

		log.Warn().
			Str("key", key).
			Str("guestID", guestID).
			Msg("took over an abandoned idempotency record")

		return Outcome{Kind: Fresh}, nil
	}

	return Outcome{}, failure.InternalError(fmt.Errorf("idempotency record in unknown state %q", existing.State)) //nolint:wrapcheck
}

func (s *serviceImpl) Complete(ctx context.Context, key, guestID, bookingID string, response []byte) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Idempotency.Complete")
	defer scope.End()

	if err := s.repo.Complete(ctx, key, guestID, bookingID, response); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to complete idempotency record")

		return fmt.Errorf("failed to complete idempotency record: %w", err)
	}

	return nil
}

// Fail marks the record failed-but-retryable. Errors are logged, not
// propagated: the caller is already on a failure path and the takeover window
// covers a record stuck in flight.
func (s *serviceImpl) Fail(ctx context.Context, key, guestID string) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Idempotency.Fail")
	defer scope.End()

	if err := s.repo.Fail(ctx, key, guestID); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to mark idempotency record failed")
	}
}

func (s *serviceImpl) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Idempotency.PurgeExpired")
	defer scope.End()

	purged, err := s.repo.DeleteExpired(ctx, timezone.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired idempotency records: %w", err)
	}

	return purged, nil
}

func (s *serviceImpl) retention() time.Duration {
	return time.Duration(s.cfg.Booking.IdempotencyRetentionHours) * time.Hour
}

func (s *serviceImpl) takeoverTimeout() time.Duration {
	return time.Duration(s.cfg.Booking.InflightTakeoverSeconds) * time.Second
}
