package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roost/config"
	otelMocks "roost/infras/otel/mocks"
	availabilityMocks "roost/internal/domains/availability/mocks"
	bookingMocks "roost/internal/domains/booking/mocks"
	"roost/internal/domains/booking/model"
	"roost/internal/domains/booking/model/dto"
	"roost/internal/domains/booking/policy"
	"roost/internal/domains/booking/service"
	idemService "roost/internal/domains/idempotency/service"
	idemServiceMocks "roost/internal/domains/idempotency/service/mocks"
	"roost/internal/domains/payment/gateway"
	paymentMocks "roost/internal/domains/payment/mocks"
	paymentModel "roost/internal/domains/payment/model"
	propertyModel "roost/internal/domains/property/model"
	propertyMocks "roost/internal/domains/property/mocks"
	eventsMocks "roost/internal/events/mocks"
	cacheMocks "roost/shared/cache/mocks"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/shared/timezone"
)

type txRunnerStub struct {
	err error
}

func (s *txRunnerStub) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if s.err != nil {
		return s.err
	}

	return fn(nil)
}

type fixture struct {
	svc       service.Booking
	repo      *bookingMocks.MockBooking
	property  *propertyMocks.MockProperty
	ledger    *availabilityMocks.MockLedger
	idem      *idemServiceMocks.MockIdempotency
	gateway   *paymentMocks.MockClient
	payments  *paymentMocks.MockPayment
	publisher *eventsMocks.MockPublisher
	cache     *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		property:  propertyMocks.NewMockProperty(ctrl),
		ledger:    availabilityMocks.NewMockLedger(ctrl),
		idem:      idemServiceMocks.NewMockIdempotency(ctrl),
		gateway:   paymentMocks.NewMockClient(ctrl),
		payments:  paymentMocks.NewMockPayment(ctrl),
		publisher: eventsMocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.HoldMinutes = 15
	cfg.Booking.MinNights = 1
	cfg.Booking.MaxNights = 30
	cfg.Booking.ServiceFee = 1500
	cfg.Booking.CancelCutoffHours = 24

	// Transitions publish events and drop caches from a goroutine; the tests
	// only assert on the synchronous path.
	f.publisher.EXPECT().PublishBookingStatusChanged(gomock.Any(), gomock.Any()).AnyTimes()
	f.publisher.EXPECT().PublishPayoutScheduled(gomock.Any(), gomock.Any()).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(
		f.repo,
		f.property,
		f.ledger,
		f.idem,
		f.gateway,
		f.payments,
		f.publisher,
		policy.NewWindow(cfg.Booking.CancelCutoffHours),
		&txRunnerStub{},
		cfg,
		f.cache,
		otelMocks.NewOtel(),
	)

	return f
}

func guestContext(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleGuest)
}

func activeProperty() propertyModel.Property {
	return propertyModel.Property{
		ID:            "22222222-2222-2222-2222-222222222222",
		HostID:        "33333333-3333-3333-3333-333333333333",
		Name:          "Seaside Cabin",
		Active:        true,
		MaxGuests:     4,
		PricePerNight: 10000,
		CleaningFee:   2000,
		Currency:      "USD",
	}
}

func createRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		PropertyID: "22222222-2222-2222-2222-222222222222",
		StartDate:  "2030-05-01",
		EndDate:    "2030-05-04",
		Guests:     2,
	}
}

func TestBookingService_Create(t *testing.T) {
	const (
		guestID = "11111111-1111-1111-1111-111111111111"
		idemKey = "req-abc"
	)

	t.Run("successful creation prices the stay and opens an intent", func(t *testing.T) {
		f := newFixture(t)

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(activeProperty(), nil)
		f.ledger.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), "22222222-2222-2222-2222-222222222222", gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.gateway.EXPECT().
			CreateIntent(gomock.Any(), gomock.Any(), int64(33500), "USD").
			Return(gateway.Intent{ID: "pi_1", ClientSecret: "cs_1", Status: "requires_payment"}, nil)
		f.payments.EXPECT().
			InsertRecord(gomock.Any(), gomock.Any()).
			Return(nil)
		f.idem.EXPECT().
			Complete(gomock.Any(), idemKey, guestID, gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusPendingPayment), res.Status)
		assert.Equal(t, int64(33500), res.TotalAmount)
		assert.Equal(t, "cs_1", res.ClientSecret)
		assert.NotEmpty(t, res.BookingID)
	})

	t.Run("replay returns the stored response without side effects", func(t *testing.T) {
		f := newFixture(t)

		stored, _ := json.Marshal(dto.CreateBookingResponse{
			BookingID:   "booking-1",
			Status:      string(model.StatusPendingPayment),
			TotalAmount: 33500,
			Currency:    "USD",
		})

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Replay, BookingID: "booking-1", Response: stored}, nil)

		res, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)

		assert.NoError(t, err)
		assert.Equal(t, "booking-1", res.BookingID)
		assert.Equal(t, int64(33500), res.TotalAmount)
	})

	t.Run("the key fingerprints identically in header and body", func(t *testing.T) {
		f := newFixture(t)

		stored, _ := json.Marshal(dto.CreateBookingResponse{
			BookingID: "booking-1",
			Status:    string(model.StatusPendingPayment),
		})

		var fingerprints []string

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, fingerprint string) (idemService.Outcome, error) {
				fingerprints = append(fingerprints, fingerprint)

				return idemService.Outcome{Kind: idemService.Replay, BookingID: "booking-1", Response: stored}, nil
			}).
			Times(2)

		_, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)
		assert.NoError(t, err)

		// The same retry may move the key from the header into the body.
		bodyReq := createRequest()
		bodyReq.IdempotencyKey = idemKey

		_, err = f.svc.Create(guestContext(guestID), bodyReq, "")
		assert.NoError(t, err)

		assert.Len(t, fingerprints, 2)
		assert.Equal(t, fingerprints[0], fingerprints[1])
	})

	t.Run("overlapping dates conflict and mark the record failed", func(t *testing.T) {
		f := newFixture(t)

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(activeProperty(), nil)
		f.ledger.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(failure.Conflict("dates unavailable"))
		f.idem.EXPECT().
			Fail(gomock.Any(), idemKey, guestID)

		_, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("gateway failure rolls the reservation back", func(t *testing.T) {
		f := newFixture(t)

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(activeProperty(), nil)
		f.ledger.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.gateway.EXPECT().
			CreateIntent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(gateway.Intent{}, failure.BadGateway("payment provider unavailable"))

		// Compensation path.
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), gomock.Any(),
				[]model.Status{model.StatusPendingPayment}, model.StatusCanceled, model.CancelReasonPaymentIntentFailed).
			Return(true, nil)
		f.idem.EXPECT().
			Fail(gomock.Any(), idemKey, guestID)

		_, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)

		assert.Error(t, err)
		assert.Equal(t, 502, failure.GetCode(err))
	})

	t.Run("missing idempotency key is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(guestContext(guestID), createRequest(), "")

		assert.Error(t, err)
		assert.Equal(t, 422, failure.GetCode(err))
	})

	t.Run("reversed dates are rejected", func(t *testing.T) {
		f := newFixture(t)

		req := createRequest()
		req.StartDate = "2030-05-04"
		req.EndDate = "2030-05-01"

		_, err := f.svc.Create(guestContext(guestID), req, idemKey)

		assert.Error(t, err)
		assert.Equal(t, 422, failure.GetCode(err))
	})

	t.Run("too many guests for the property", func(t *testing.T) {
		f := newFixture(t)

		req := createRequest()
		req.Guests = 9

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(activeProperty(), nil)
		f.idem.EXPECT().
			Fail(gomock.Any(), idemKey, guestID)

		_, err := f.svc.Create(guestContext(guestID), req, idemKey)

		assert.Error(t, err)
		assert.Equal(t, 422, failure.GetCode(err))
	})

	t.Run("inactive property is not bookable", func(t *testing.T) {
		f := newFixture(t)

		inactive := activeProperty()
		inactive.Active = false

		f.idem.EXPECT().
			BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
			Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(inactive, nil)
		f.idem.EXPECT().
			Fail(gomock.Any(), idemKey, guestID)

		_, err := f.svc.Create(guestContext(guestID), createRequest(), idemKey)

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestBookingService_Create_LongStayDiscount(t *testing.T) {
	const (
		guestID = "11111111-1111-1111-1111-111111111111"
		idemKey = "req-discount"
	)

	f := newFixture(t)

	req := createRequest()
	req.StartDate = "2030-05-01"
	req.EndDate = "2030-05-08"

	// 7 nights at 10000 = 70000, 5% discount = 3500; 70000 + 2000 + 1500 - 3500.
	f.idem.EXPECT().
		BeginOrReplay(gomock.Any(), idemKey, guestID, gomock.Any()).
		Return(idemService.Outcome{Kind: idemService.Fresh}, nil)
	f.property.EXPECT().
		GetForBooking(gomock.Any(), gomock.Any()).
		Return(activeProperty(), nil)
	f.ledger.EXPECT().
		Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.repo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.gateway.EXPECT().
		CreateIntent(gomock.Any(), gomock.Any(), int64(70000), "USD").
		Return(gateway.Intent{ID: "pi_2", ClientSecret: "cs_2"}, nil)
	f.payments.EXPECT().
		InsertRecord(gomock.Any(), gomock.Any()).
		Return(nil)
	f.idem.EXPECT().
		Complete(gomock.Any(), idemKey, guestID, gomock.Any(), gomock.Any()).
		Return(nil)

	res, err := f.svc.Create(guestContext(guestID), req, idemKey)

	assert.NoError(t, err)
	assert.Equal(t, int64(70000), res.TotalAmount)
}

func pendingBooking(guestID string) model.Booking {
	return model.Booking{
		ID:          "booking-1",
		PropertyID:  "22222222-2222-2222-2222-222222222222",
		GuestID:     guestID,
		StartDate:   time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC),
		Status:      model.StatusPendingPayment,
		Guests:      2,
		TotalAmount: 33500,
		Currency:    "USD",
	}
}

func TestBookingService_Cancel(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	t.Run("guest cancels a pending booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), "22222222-2222-2222-2222-222222222222").
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				[]model.Status{model.StatusPendingPayment, model.StatusConfirmed},
				model.StatusCanceled, model.CancelReasonGuestRequest).
			Return(true, nil)

		res, err := f.svc.Cancel(guestContext(guestID), "booking-1", "")

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusCanceled), res.Status)
	})

	t.Run("stranger may not cancel", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), "22222222-2222-2222-2222-222222222222").
			Return(activeProperty(), nil)

		_, err := f.svc.Cancel(guestContext("99999999-9999-9999-9999-999999999999"), "booking-1", "")

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("host cancels with the host reason", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), "22222222-2222-2222-2222-222222222222").
			Return(activeProperty(), nil)
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				gomock.Any(), model.StatusCanceled, model.CancelReasonHostRequest).
			Return(true, nil)

		res, err := f.svc.Cancel(guestContext("33333333-3333-3333-3333-333333333333"), "booking-1", "")

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusCanceled), res.Status)
	})

	t.Run("terminal booking conflicts", func(t *testing.T) {
		f := newFixture(t)

		canceled := pendingBooking(guestID)
		canceled.Status = model.StatusCanceled

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(canceled, nil)

		_, err := f.svc.Cancel(guestContext(guestID), "booking-1", "")

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("confirmed booking inside the cutoff window is not cancelable", func(t *testing.T) {
		f := newFixture(t)

		confirmed := pendingBooking(guestID)
		confirmed.Status = model.StatusConfirmed
		confirmed.StartDate = timezone.Now().Add(2 * time.Hour)
		confirmed.EndDate = confirmed.StartDate.AddDate(0, 0, 3)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(confirmed, nil)

		_, err := f.svc.Cancel(guestContext(guestID), "booking-1", "")

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "missing").
			Return(model.Booking{}, nil)

		_, err := f.svc.Cancel(guestContext(guestID), "missing", "")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestBookingService_Confirm(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	t.Run("pending booking confirms", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				[]model.Status{model.StatusPendingPayment}, model.StatusConfirmed, "").
			Return(true, nil)

		assert.NoError(t, f.svc.Confirm(context.Background(), "booking-1"))
	})

	t.Run("duplicate confirmation is a no-op", func(t *testing.T) {
		f := newFixture(t)

		confirmed := pendingBooking(guestID)
		confirmed.Status = model.StatusConfirmed

		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(confirmed, nil)

		assert.NoError(t, f.svc.Confirm(context.Background(), "booking-1"))
	})

	t.Run("confirmation after cancellation is discarded", func(t *testing.T) {
		f := newFixture(t)

		canceled := pendingBooking(guestID)
		canceled.Status = model.StatusCanceled

		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(canceled, nil)

		assert.NoError(t, f.svc.Confirm(context.Background(), "booking-1"))
	})
}

func TestBookingService_CancelFromPayment(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	t.Run("pending booking is canceled and released", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				[]model.Status{model.StatusPendingPayment}, model.StatusCanceled, model.CancelReasonPaymentFailed).
			Return(true, nil)

		assert.NoError(t, f.svc.CancelFromPayment(context.Background(), "booking-1", model.CancelReasonPaymentFailed))
	})

	t.Run("failure event after confirmation is ignored", func(t *testing.T) {
		f := newFixture(t)

		confirmed := pendingBooking(guestID)
		confirmed.Status = model.StatusConfirmed

		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(confirmed, nil)

		assert.NoError(t, f.svc.CancelFromPayment(context.Background(), "booking-1", model.CancelReasonPaymentFailed))
	})
}

func TestBookingService_ExpireStaleHolds(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	t.Run("stale pending holds are expired", func(t *testing.T) {
		f := newFixture(t)

		stale := pendingBooking(guestID)
		stale.CreatedAt = timezone.Now().Add(-time.Hour)

		f.repo.EXPECT().
			ListExpiredPending(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{stale}, nil)
		f.payments.EXPECT().
			GetRecordByBookingID(gomock.Any(), "booking-1").
			Return(paymentModel.Record{}, nil)
		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(stale, nil)
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				[]model.Status{model.StatusPendingPayment}, model.StatusCanceled, model.CancelReasonExpired).
			Return(true, nil)

		expired, err := f.svc.ExpireStaleHolds(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, expired)
	})

	t.Run("a hold confirmed since the listing is skipped", func(t *testing.T) {
		f := newFixture(t)

		stale := pendingBooking(guestID)
		stale.CreatedAt = timezone.Now().Add(-time.Hour)

		confirmed := stale
		confirmed.Status = model.StatusConfirmed

		f.repo.EXPECT().
			ListExpiredPending(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{stale}, nil)
		f.payments.EXPECT().
			GetRecordByBookingID(gomock.Any(), "booking-1").
			Return(paymentModel.Record{}, nil)
		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(confirmed, nil)

		expired, err := f.svc.ExpireStaleHolds(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
	})

	t.Run("a failing row does not halt the sweep", func(t *testing.T) {
		f := newFixture(t)

		stale := pendingBooking(guestID)
		stale.CreatedAt = timezone.Now().Add(-time.Hour)

		other := stale
		other.ID = "booking-2"

		f.repo.EXPECT().
			ListExpiredPending(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{stale, other}, nil)
		f.payments.EXPECT().
			GetRecordByBookingID(gomock.Any(), gomock.Any()).
			Return(paymentModel.Record{}, nil).
			Times(2)
		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(model.Booking{}, errors.New("database error"))
		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-2").
			Return(other, nil)
		f.ledger.EXPECT().
			Release(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-2",
				gomock.Any(), model.StatusCanceled, model.CancelReasonExpired).
			Return(true, nil)

		expired, err := f.svc.ExpireStaleHolds(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, expired)
	})

	t.Run("a stale hold with a succeeded intent is confirmed, not expired", func(t *testing.T) {
		f := newFixture(t)

		stale := pendingBooking(guestID)
		stale.CreatedAt = timezone.Now().Add(-time.Hour)

		f.repo.EXPECT().
			ListExpiredPending(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{stale}, nil)
		f.payments.EXPECT().
			GetRecordByBookingID(gomock.Any(), "booking-1").
			Return(paymentModel.Record{ID: "rec-1", BookingID: "booking-1", IntentID: "pi_1"}, nil)
		f.gateway.EXPECT().
			GetIntent(gomock.Any(), "pi_1").
			Return(gateway.Intent{ID: "pi_1", Status: paymentModel.IntentStatusSucceeded}, nil)
		f.repo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-1").
			Return(stale, nil)
		f.repo.EXPECT().
			UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
				[]model.Status{model.StatusPendingPayment}, model.StatusConfirmed, "").
			Return(true, nil)

		expired, err := f.svc.ExpireStaleHolds(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
	})

	t.Run("provider outage defers the row to the next pass", func(t *testing.T) {
		f := newFixture(t)

		stale := pendingBooking(guestID)
		stale.CreatedAt = timezone.Now().Add(-time.Hour)

		f.repo.EXPECT().
			ListExpiredPending(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{stale}, nil)
		f.payments.EXPECT().
			GetRecordByBookingID(gomock.Any(), "booking-1").
			Return(paymentModel.Record{ID: "rec-1", BookingID: "booking-1", IntentID: "pi_1"}, nil)
		f.gateway.EXPECT().
			GetIntent(gomock.Any(), "pi_1").
			Return(gateway.Intent{}, errors.New("provider unreachable"))

		expired, err := f.svc.ExpireStaleHolds(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
	})
}

func TestBookingService_CompleteFinishedStays(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	f := newFixture(t)

	finished := pendingBooking(guestID)
	finished.Status = model.StatusConfirmed

	f.repo.EXPECT().
		ListFinishedStays(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{finished}, nil)
	f.repo.EXPECT().
		UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-1",
			[]model.Status{model.StatusConfirmed}, model.StatusCompleted, "").
		Return(true, nil)

	completed, err := f.svc.CompleteFinishedStays(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, completed)
}

func TestBookingService_Get(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	t.Run("guest reads their own booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis: nil"))

		res, err := f.svc.Get(guestContext(guestID), "booking-1")

		assert.NoError(t, err)
		assert.Equal(t, "booking-1", res.ID)
		assert.Equal(t, string(model.StatusPendingPayment), res.Status)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetByID(gomock.Any(), "booking-1").
			Return(pendingBooking(guestID), nil)
		f.property.EXPECT().
			GetForBooking(gomock.Any(), gomock.Any()).
			Return(activeProperty(), nil)

		_, err := f.svc.Get(guestContext("99999999-9999-9999-9999-999999999999"), "booking-1")

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})
}

func TestBookingService_GetMyBookings(t *testing.T) {
	const guestID = "11111111-1111-1111-1111-111111111111"

	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis: nil"))
	f.repo.EXPECT().
		CountByGuest(gomock.Any(), guestID).
		Return(1, nil)
	f.repo.EXPECT().
		ListByGuest(gomock.Any(), guestID, 10, 0).
		Return([]model.Booking{pendingBooking(guestID)}, nil)

	res, err := f.svc.GetMyBookings(guestContext(guestID), 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Bookings, 1)
}
