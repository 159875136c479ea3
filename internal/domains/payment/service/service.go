package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/otel"
	bookingModel "roost/internal/domains/booking/model"
	bookingRepo "roost/internal/domains/booking/repository"
	bookingService "roost/internal/domains/booking/service"
	"roost/internal/domains/payment/gateway"
	"roost/internal/domains/payment/model"
	"roost/internal/domains/payment/repository"
	"roost/internal/events"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/shared/timezone"
)

// Webhook turns verified provider events into booking transitions. Every
// accepted event produces at most one transition; duplicates and unknown
// event kinds are acknowledged without side effects.
type Webhook interface {
	Process(ctx context.Context, payload []byte, signatureHeader string) error
}

type serviceImpl struct {
	bookings  bookingService.Booking
	bookingDB bookingRepo.Booking
	repo      repository.Payment
	publisher events.Publisher
	cfg       *config.Config
	otel      otel.Otel
	locks     *keyedMutex
}

func New(
	bookings bookingService.Booking,
	bookingDB bookingRepo.Booking,
	repo repository.Payment,
	publisher events.Publisher,
	cfg *config.Config,
	ot otel.Otel,
) Webhook {
	return &serviceImpl{
		bookings:  bookings,
		bookingDB: bookingDB,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		otel:      ot,
		locks:     newKeyedMutex(),
	}
}

func (s *serviceImpl) Process(ctx context.Context, payload []byte, signatureHeader string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Webhook.Process")
	defer scope.End()
	defer scope.TraceIfError(err)

	tolerance := time.Duration(s.cfg.Payment.SignatureToleranceSeconds) * time.Second
	if err = gateway.VerifySignature(payload, signatureHeader, s.cfg.Payment.WebhookSecret, tolerance, timezone.Now()); err != nil {
		return err
	}

	var event model.WebhookEvent
	if err = json.Unmarshal(payload, &event); err != nil {
		return failure.BadRequestFromString("malformed webhook payload") //nolint:wrapcheck
	}

	if event.ID == constant.Empty {
		return failure.BadRequestFromString("webhook event is missing an id") //nolint:wrapcheck
	}

	switch event.Type {
	case model.EventPaymentSucceeded, model.EventPaymentFailed, model.EventPaymentCanceled:
	default:
		log.Info().Str("eventID", event.ID).Str("type", event.Type).Msg("ignoring unrecognized webhook event type")

		return nil
	}

	bookingID, err := s.resolveBookingID(ctx, event)
	if err != nil {
		return err
	}

	// Dedup before side effects: the same provider event id is processed once,
	// no matter how many times the provider retries delivery.
	fresh, err := s.repo.InsertEvent(ctx, event.ID)
	if err != nil {
		return err
	}

	if !fresh {
		log.Info().Str("eventID", event.ID).Str("bookingID", bookingID).Msg("duplicate webhook event, already processed")

		return nil
	}

	unlock := s.locks.Lock(bookingID)
	defer unlock()

	switch event.Type {
	case model.EventPaymentSucceeded:
		err = s.handleSucceeded(ctx, event, bookingID)
	case model.EventPaymentFailed:
		err = s.handleFailed(ctx, event, bookingID, bookingModel.CancelReasonPaymentFailed)
	case model.EventPaymentCanceled:
		err = s.handleFailed(ctx, event, bookingID, bookingModel.CancelReasonPaymentCanceled)
	}

	if err != nil {
		// The transition did not commit, so the event is not processed yet.
		// Release the event id so the provider's redelivery is handled again
		// instead of being dropped as a duplicate.
		if delErr := s.repo.DeleteEvent(ctx, event.ID); delErr != nil {
			log.Error().Err(delErr).Str("eventID", event.ID).Msg("failed to release webhook event id for redelivery")
		}
	}

	return err
}

// resolveBookingID prefers the booking id the intent was created with and
// falls back to the payment record when the provider omitted the metadata.
func (s *serviceImpl) resolveBookingID(ctx context.Context, event model.WebhookEvent) (string, error) {
	if event.Data.BookingID != constant.Empty {
		return event.Data.BookingID, nil
	}

	if event.Data.IntentID == constant.Empty {
		return constant.Empty, failure.BadRequestFromString("webhook event references no booking or intent") //nolint:wrapcheck
	}

	record, err := s.repo.GetRecordByIntentID(ctx, event.Data.IntentID)
	if err != nil {
		return constant.Empty, err
	}

	if record.BookingID == constant.Empty {
		return constant.Empty, failure.NotFound("no booking found for payment intent") //nolint:wrapcheck
	}

	return record.BookingID, nil
}

func (s *serviceImpl) handleSucceeded(ctx context.Context, event model.WebhookEvent, bookingID string) error {
	if err := s.bookings.Confirm(ctx, bookingID); err != nil {
		return err
	}

	s.updateRecordStatus(ctx, event.Data.IntentID, model.IntentStatusSucceeded)
	s.schedulePayout(ctx, bookingID)

	return nil
}

func (s *serviceImpl) handleFailed(ctx context.Context, event model.WebhookEvent, bookingID, reason string) error {
	if err := s.bookings.CancelFromPayment(ctx, bookingID, reason); err != nil {
		return err
	}

	status := model.IntentStatusFailed
	if event.Type == model.EventPaymentCanceled {
		status = model.IntentStatusCanceled
	}

	s.updateRecordStatus(ctx, event.Data.IntentID, status)

	return nil
}

func (s *serviceImpl) updateRecordStatus(ctx context.Context, intentID, status string) {
	if intentID == constant.Empty {
		return
	}

	if err := s.repo.UpdateRecordStatus(ctx, intentID, status); err != nil {
		log.Error().Err(err).Str("intentID", intentID).Msg("failed to update payment record status")
	}
}

func (s *serviceImpl) schedulePayout(ctx context.Context, bookingID string) {
	booking, err := s.bookingDB.GetByID(ctx, bookingID)
	if err != nil || booking.ID == constant.Empty {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to load booking for payout scheduling")

		return
	}

	s.publisher.PublishPayoutScheduled(ctx, events.PayoutScheduled{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		Amount:     booking.TotalAmount,
		Currency:   booking.Currency,
	})
}
