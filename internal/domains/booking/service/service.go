package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/internal/domains/availability"
	"roost/internal/domains/booking/model"
	"roost/internal/domains/booking/model/dto"
	"roost/internal/domains/booking/policy"
	"roost/internal/domains/booking/repository"
	idemService "roost/internal/domains/idempotency/service"
	"roost/internal/domains/payment/gateway"
	paymentModel "roost/internal/domains/payment/model"
	paymentRepo "roost/internal/domains/payment/repository"
	propertyModel "roost/internal/domains/property/model"
	propertyRepo "roost/internal/domains/property/repository"
	"roost/internal/events"
	"roost/shared"
	"roost/shared/cache"
	"roost/shared/constant"
	"roost/shared/failure"
	gModel "roost/shared/model"
	"roost/shared/timezone"
)

const (
	cacheGetBooking = "booking:get"
	cacheMyBookings = "booking:mine"

	sweepBatchSize = 100

	longStayNights      = 7
	longStayDiscountPct = 5
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest, idempotencyKey string) (dto.CreateBookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetMyBookings(ctx context.Context, page, limit int) (dto.GetBookingsResponse, error)
	Cancel(ctx context.Context, id, reason string) (dto.CancelBookingResponse, error)

	// Confirm and CancelFromPayment are driven by the payment adapter; they
	// are not exposed over HTTP.
	Confirm(ctx context.Context, bookingID string) error
	CancelFromPayment(ctx context.Context, bookingID, reason string) error

	// Sweep entry points; see internal/service/sweep.
	ExpireStaleHolds(ctx context.Context) (int, error)
	CompleteFinishedStays(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo         repository.Booking
	propertyRepo propertyRepo.Property
	ledger       availability.Ledger
	idem         idemService.Idempotency
	gateway      gateway.Client
	payments     paymentRepo.Payment
	publisher    events.Publisher
	policy       policy.CancellationPolicy
	db           postgres.TxRunner
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	property propertyRepo.Property,
	ledger availability.Ledger,
	idem idemService.Idempotency,
	gatewayClient gateway.Client,
	payments paymentRepo.Payment,
	publisher events.Publisher,
	cancellationPolicy policy.CancellationPolicy,
	db postgres.TxRunner,
	cfg *config.Config,
	redisCache cache.RedisCache,
	ot otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: property,
		ledger:       ledger,
		idem:         idem,
		gateway:      gatewayClient,
		payments:     payments,
		publisher:    publisher,
		policy:       cancellationPolicy,
		db:           db,
		cfg:          cfg,
		cache:        redisCache,
		otel:         ot,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest, idempotencyKey string) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	guestID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if guestID == constant.Empty {
		return res, failure.Unauthorized("unauthorized") //nolint:wrapcheck
	}

	if idempotencyKey == constant.Empty {
		idempotencyKey = req.IdempotencyKey
	}

	if idempotencyKey == constant.Empty {
		return res, failure.Unprocessable("idempotency key is required") //nolint:wrapcheck
	}

	start, end, err := req.Dates()
	if err != nil {
		return res, failure.Unprocessable(fmt.Sprintf("invalid date format: %v", err)) //nolint:wrapcheck
	}

	if err = s.validateStay(start, end); err != nil {
		return res, err
	}

	// The key may travel in the header or the body; it is excluded from the
	// fingerprint so both spellings of the same retry match.
	fingerprinted := req
	fingerprinted.IdempotencyKey = constant.Empty

	// The in-flight record must exist before the ledger is touched so a crash
	// mid-request leaves a detectable marker rather than silent duplication.
	outcome, err := s.idem.BeginOrReplay(ctx, idempotencyKey, guestID, idemService.Fingerprint(fingerprinted))
	if err != nil {
		return res, err
	}

	if outcome.Kind == idemService.Replay {
		if err = json.Unmarshal(outcome.Response, &res); err != nil {
			log.Error().Err(err).Str("key", idempotencyKey).Msg("failed to decode stored idempotent response")

			return res, failure.InternalError(fmt.Errorf("failed to decode stored response: %w", err)) //nolint:wrapcheck
		}

		log.Info().Str("bookingID", outcome.BookingID).Str("key", idempotencyKey).Msg("replayed idempotent booking creation")

		return res, nil
	}

	property, err := s.lookupProperty(ctx, req, guestID, idempotencyKey)
	if err != nil {
		return res, err
	}

	booking := req.ToModel(guestID, idempotencyKey, start, end)
	s.price(&booking, property)

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ledger.Reserve(ctx, tx, booking.PropertyID, booking.StartDate, booking.EndDate); err != nil {
			return err
		}

		return s.repo.InsertTx(ctx, tx, booking)
	})
	if err != nil {
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return res, err
	}

	intent, err := s.gateway.CreateIntent(ctx, booking.ID, booking.TotalAmount, booking.Currency)
	if err != nil {
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("payment intent creation failed, rolling back reservation")

		s.compensateFailedIntent(ctx, booking)
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return res, err
	}

	s.recordPayment(ctx, booking, intent)

	res = dto.CreateBookingResponse{
		BookingID:    booking.ID,
		Status:       string(model.StatusPendingPayment),
		ClientSecret: intent.ClientSecret,
		TotalAmount:  booking.TotalAmount,
		Currency:     booking.Currency,
	}

	raw, err := json.Marshal(res)
	if err != nil {
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to encode idempotent response")
	} else if err = s.idem.Complete(ctx, idempotencyKey, guestID, booking.ID, raw); err != nil {
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to store idempotent response")
	}

	s.afterTransition(ctx, booking, constant.Empty)

	return res, nil
}

func (s *serviceImpl) validateStay(start, end time.Time) error {
	if !start.Before(end) {
		return failure.Unprocessable("start_date must be before end_date") //nolint:wrapcheck
	}

	nights := model.Nights(start, end)
	if nights < s.cfg.Booking.MinNights || nights > s.cfg.Booking.MaxNights {
		return failure.Unprocessable(fmt.Sprintf("stay length must be between %d and %d nights", s.cfg.Booking.MinNights, s.cfg.Booking.MaxNights)) //nolint:wrapcheck
	}

	if start.Before(today()) {
		return failure.Unprocessable("start_date must not be in the past") //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) lookupProperty(ctx context.Context, req dto.CreateBookingRequest, guestID, idempotencyKey string) (propertyModel.Property, error) {
	property, err := s.propertyRepo.GetForBooking(ctx, req.PropertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up property")
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return property, fmt.Errorf("failed to look up property: %w", err)
	}

	if property.ID == constant.Empty || !property.Active {
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return property, failure.NotFound("property not found") //nolint:wrapcheck
	}

	if req.Guests > property.MaxGuests {
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return property, failure.Unprocessable(fmt.Sprintf("property sleeps at most %d guests", property.MaxGuests)) //nolint:wrapcheck
	}

	if req.Currency != constant.Empty && !strings.EqualFold(req.Currency, property.Currency) {
		s.idem.Fail(ctx, idempotencyKey, guestID)

		return property, failure.Unprocessable(fmt.Sprintf("property is priced in %s", property.Currency)) //nolint:wrapcheck
	}

	return property, nil
}

// price fills the flat-rate breakdown: nightly rate times nights plus fixed
// fees, minus the long-stay discount.
func (s *serviceImpl) price(booking *model.Booking, property propertyModel.Property) {
	nights := int64(booking.Nights())
	subtotal := property.PricePerNight * nights

	var discount int64
	if nights >= longStayNights {
		discount = subtotal * longStayDiscountPct / 100
	}

	booking.NightlyRate = property.PricePerNight
	booking.CleaningFee = property.CleaningFee
	booking.ServiceFee = s.cfg.Booking.ServiceFee
	booking.Discount = discount
	booking.TotalAmount = subtotal + property.CleaningFee + s.cfg.Booking.ServiceFee - discount
	booking.Currency = property.Currency
}

// compensateFailedIntent rolls the reservation back after a gateway failure so
// no hold dangles without a payable intent. Same atomic release path as a
// user-triggered cancellation.
func (s *serviceImpl) compensateFailedIntent(ctx context.Context, booking model.Booking) {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ledger.Release(ctx, tx, booking.PropertyID); err != nil {
			return err
		}

		_, err := s.repo.UpdateStatusTx(ctx, tx, booking.ID, []model.Status{model.StatusPendingPayment}, model.StatusCanceled, model.CancelReasonPaymentIntentFailed)

		return err
	})
	if err != nil {
		// The hold will still be reclaimed by the expiry sweep.
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to roll back reservation after gateway failure")
	}
}

func (s *serviceImpl) recordPayment(ctx context.Context, booking model.Booking, intent gateway.Intent) {
	status := intent.Status
	if status == constant.Empty {
		status = paymentModel.IntentStatusRequiresPayment
	}

	record := paymentModel.Record{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Provider:  s.cfg.Payment.Provider,
		IntentID:  intent.ID,
		Status:    status,
		Amount:    booking.TotalAmount,
		Currency:  booking.Currency,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  booking.GuestID,
			ModifiedBy: booking.GuestID,
		},
	}

	if err := s.payments.InsertRecord(ctx, record); err != nil {
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to persist payment record")
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if err = s.authorize(ctx, booking); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetMyBookings(ctx context.Context, page, limit int) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetMyBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	guestID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if guestID == constant.Empty {
		return res, failure.Unauthorized("unauthorized") //nolint:wrapcheck
	}

	if page < 1 {
		page = constant.DefaultValuePage
	}

	if limit < 1 {
		limit = constant.DefaultValueLimit
	}

	cacheKey := shared.BuildCacheKey(cacheMyBookings, guestID, strconv.Itoa(page), strconv.Itoa(limit))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	total, err := s.repo.CountByGuest(ctx, guestID)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.ListByGuest(ctx, guestID, limit, (page-1)*limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	res.TotalData = total
	res.TotalPage = shared.CalculateTotalPage(total, limit)
	res.Bookings = make([]dto.BookingResponse, len(bookings))

	for i, booking := range bookings {
		res.Bookings[i].FromModel(booking)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id, reason string) (res dto.CancelBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if booking.Status.Terminal() {
		return res, failure.Conflict(fmt.Sprintf("booking already %s", booking.Status)) //nolint:wrapcheck
	}

	cancelReason, err := s.cancelActor(ctx, booking, userID, reason)
	if err != nil {
		return res, err
	}

	if err = s.policy.Allow(timezone.Now(), booking.StartDate, booking.Status); err != nil {
		return res, err
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ledger.Release(ctx, tx, booking.PropertyID); err != nil {
			return err
		}

		transitioned, err := s.repo.UpdateStatusTx(ctx, tx, booking.ID,
			[]model.Status{model.StatusPendingPayment, model.StatusConfirmed},
			model.StatusCanceled, cancelReason)
		if err != nil {
			return err
		}

		if !transitioned {
			return failure.Conflict("booking was finalized concurrently") //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	booking.Status = model.StatusCanceled
	s.afterTransition(ctx, booking, cancelReason)

	return dto.CancelBookingResponse{
		BookingID: booking.ID,
		Status:    string(model.StatusCanceled),
	}, nil
}

// cancelActor authorizes the cancellation and picks the default reason for
// the acting party. Actors: the booking's guest, the property's host, admins.
func (s *serviceImpl) cancelActor(ctx context.Context, booking model.Booking, userID, reason string) (string, error) {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	switch {
	case userID == booking.GuestID:
		if reason == constant.Empty {
			reason = model.CancelReasonGuestRequest
		}
	case role == constant.RoleAdmin:
		if reason == constant.Empty {
			reason = model.CancelReasonHostRequest
		}
	default:
		property, err := s.propertyRepo.GetForBooking(ctx, booking.PropertyID)
		if err != nil {
			return constant.Empty, fmt.Errorf("failed to look up property: %w", err)
		}

		if property.HostID != userID {
			return constant.Empty, failure.Forbidden("only the guest, the host or an admin may cancel this booking") //nolint:wrapcheck
		}

		if reason == constant.Empty {
			reason = model.CancelReasonHostRequest
		}
	}

	return reason, nil
}

func (s *serviceImpl) authorize(ctx context.Context, booking model.Booking) error {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if userID == booking.GuestID || role == constant.RoleAdmin {
		return nil
	}

	property, err := s.propertyRepo.GetForBooking(ctx, booking.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to look up property: %w", err)
	}

	if property.HostID == userID {
		return nil
	}

	return failure.Forbidden("you do not have access to this booking") //nolint:wrapcheck
}

func (s *serviceImpl) Confirm(ctx context.Context, bookingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Confirm")
	defer scope.End()
	defer scope.TraceIfError(err)

	var confirmed model.Booking

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		booking, err := s.repo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found") //nolint:wrapcheck
		}

		switch booking.Status {
		case model.StatusConfirmed:
			// Duplicate delivery; already confirmed.
			return nil
		case model.StatusCanceled, model.StatusCompleted:
			log.Warn().
				Str("bookingID", bookingID).
				Str("status", string(booking.Status)).
				Msg("payment confirmation received for a finalized booking, discarding")

			return nil
		}

		transitioned, err := s.repo.UpdateStatusTx(ctx, tx, bookingID,
			[]model.Status{model.StatusPendingPayment}, model.StatusConfirmed, constant.Empty)
		if err != nil {
			return err
		}

		if transitioned {
			booking.Status = model.StatusConfirmed
			confirmed = booking
		}

		return nil
	})
	if err != nil {
		return err
	}

	if confirmed.ID != constant.Empty {
		s.afterTransition(ctx, confirmed, constant.Empty)
	}

	return nil
}

func (s *serviceImpl) CancelFromPayment(ctx context.Context, bookingID, reason string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CancelFromPayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	var canceled model.Booking

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		booking, err := s.repo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found") //nolint:wrapcheck
		}

		switch booking.Status {
		case model.StatusConfirmed:
			// Out-of-order delivery: a failure event arrived after the
			// success. Never silently re-cancel a confirmed paid booking.
			log.Warn().
				Str("bookingID", bookingID).
				Str("reason", reason).
				Msg("payment failure received for a confirmed booking, ignoring")

			return nil
		case model.StatusCanceled, model.StatusCompleted:
			return nil
		}

		if err := s.ledger.Release(ctx, tx, booking.PropertyID); err != nil {
			return err
		}

		transitioned, err := s.repo.UpdateStatusTx(ctx, tx, bookingID,
			[]model.Status{model.StatusPendingPayment}, model.StatusCanceled, reason)
		if err != nil {
			return err
		}

		if transitioned {
			booking.Status = model.StatusCanceled
			canceled = booking
		}

		return nil
	})
	if err != nil {
		return err
	}

	if canceled.ID != constant.Empty {
		s.afterTransition(ctx, canceled, reason)
	}

	return nil
}

// ExpireStaleHolds reclaims inventory from provisional bookings whose payment
// never completed within the hold window. Each candidate is reconciled with
// the payment provider first; a hold whose intent succeeded is confirmed
// rather than expired. Per-booking failures are logged and skipped so one bad
// row cannot halt the sweep.
func (s *serviceImpl) ExpireStaleHolds(ctx context.Context) (expired int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.ExpireStaleHolds")
	defer scope.End()
	defer scope.TraceIfError(err)

	cutoff := timezone.Now().Add(-time.Duration(s.cfg.Booking.HoldMinutes) * time.Minute)

	stale, err := s.repo.ListExpiredPending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired bookings: %w", err)
	}

	for _, booking := range stale {
		// A succeeded intent whose webhook never arrived must not lose its
		// inventory: reconcile with the provider before reclaiming the hold.
		recovered, recErr := s.reconcileWithProvider(ctx, booking.ID)
		if recErr != nil {
			log.Warn().Err(recErr).Str("bookingID", booking.ID).Msg("provider reconciliation failed, retrying next pass")

			continue
		}

		if recovered {
			continue
		}

		txErr := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			current, err := s.repo.GetByIDForUpdate(ctx, tx, booking.ID)
			if err != nil {
				return err
			}

			// A payment may have confirmed the booking since the listing.
			if current.Status != model.StatusPendingPayment || !current.CreatedAt.Before(cutoff) {
				return nil
			}

			if err := s.ledger.Release(ctx, tx, current.PropertyID); err != nil {
				return err
			}

			transitioned, err := s.repo.UpdateStatusTx(ctx, tx, current.ID,
				[]model.Status{model.StatusPendingPayment}, model.StatusCanceled, model.CancelReasonExpired)
			if err != nil {
				return err
			}

			if transitioned {
				expired++

				current.Status = model.StatusCanceled
				s.afterTransition(ctx, current, model.CancelReasonExpired)
			}

			return nil
		})
		if txErr != nil {
			log.Error().Err(txErr).Str("bookingID", booking.ID).Msg("failed to expire booking, skipping")
		}
	}

	return expired, nil
}

// reconcileWithProvider checks the payment intent behind a stale hold. When
// the provider reports the intent succeeded, the webhook was lost and the
// booking is confirmed instead of expired. Returns true when the hold must be
// kept.
func (s *serviceImpl) reconcileWithProvider(ctx context.Context, bookingID string) (bool, error) {
	record, err := s.payments.GetRecordByBookingID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if record.IntentID == constant.Empty {
		return false, nil
	}

	intent, err := s.gateway.GetIntent(ctx, record.IntentID)
	if err != nil {
		return false, err
	}

	if intent.Status != paymentModel.IntentStatusSucceeded {
		return false, nil
	}

	log.Warn().
		Str("bookingID", bookingID).
		Str("intentID", record.IntentID).
		Msg("stale hold has a succeeded intent, confirming instead of expiring")

	if err = s.Confirm(ctx, bookingID); err != nil {
		return false, err
	}

	return true, nil
}

// CompleteFinishedStays moves confirmed bookings whose checkout day has passed
// into the terminal completed status.
func (s *serviceImpl) CompleteFinishedStays(ctx context.Context) (completed int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CompleteFinishedStays")
	defer scope.End()
	defer scope.TraceIfError(err)

	finished, err := s.repo.ListFinishedStays(ctx, today(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list finished stays: %w", err)
	}

	for _, booking := range finished {
		txErr := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			transitioned, err := s.repo.UpdateStatusTx(ctx, tx, booking.ID,
				[]model.Status{model.StatusConfirmed}, model.StatusCompleted, constant.Empty)
			if err != nil {
				return err
			}

			if transitioned {
				completed++

				booking.Status = model.StatusCompleted
				s.afterTransition(ctx, booking, constant.Empty)
			}

			return nil
		})
		if txErr != nil {
			log.Error().Err(txErr).Str("bookingID", booking.ID).Msg("failed to complete booking, skipping")
		}
	}

	return completed, nil
}

// afterTransition publishes the status change and drops display caches.
func (s *serviceImpl) afterTransition(ctx context.Context, booking model.Booking, reason string) {
	go func() {
		c := context.WithoutCancel(ctx)

		s.publisher.PublishBookingStatusChanged(c, events.BookingStatusChanged{
			BookingID:  booking.ID,
			PropertyID: booking.PropertyID,
			GuestID:    booking.GuestID,
			Status:     string(booking.Status),
			Reason:     reason,
		})

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheMyBookings, booking.GuestID))
	}()
}

func today() time.Time {
	now := timezone.Now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
