package sweep_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roost/config"
	otelMocks "roost/infras/otel/mocks"
	bookingServiceMocks "roost/internal/domains/booking/service/mocks"
	idemServiceMocks "roost/internal/domains/idempotency/service/mocks"
	"roost/internal/service/sweep"
)

func TestSweeper_RunOnce(t *testing.T) {
	newSweeper := func(t *testing.T) (sweep.Sweeper, *bookingServiceMocks.MockBooking, *idemServiceMocks.MockIdempotency) {
		t.Helper()

		ctrl := gomock.NewController(t)
		bookings := bookingServiceMocks.NewMockBooking(ctrl)
		idem := idemServiceMocks.NewMockIdempotency(ctrl)

		cfg := &config.Config{}
		cfg.Booking.SweepIntervalSeconds = 30

		return sweep.New(bookings, idem, cfg, otelMocks.NewOtel()), bookings, idem
	}

	t.Run("runs every stage of the pass", func(t *testing.T) {
		sweeper, bookings, idem := newSweeper(t)

		bookings.EXPECT().ExpireStaleHolds(gomock.Any()).Return(2, nil)
		bookings.EXPECT().CompleteFinishedStays(gomock.Any()).Return(1, nil)
		idem.EXPECT().PurgeExpired(gomock.Any()).Return(int64(5), nil)

		assert.NoError(t, sweeper.RunOnce(context.Background()))
	})

	t.Run("stops at the first failing stage", func(t *testing.T) {
		sweeper, bookings, _ := newSweeper(t)

		bookings.EXPECT().
			ExpireStaleHolds(gomock.Any()).
			Return(0, errors.New("db down"))

		assert.Error(t, sweeper.RunOnce(context.Background()))
	})

	t.Run("purge failure surfaces after booking stages", func(t *testing.T) {
		sweeper, bookings, idem := newSweeper(t)

		bookings.EXPECT().ExpireStaleHolds(gomock.Any()).Return(0, nil)
		bookings.EXPECT().CompleteFinishedStays(gomock.Any()).Return(0, nil)
		idem.EXPECT().
			PurgeExpired(gomock.Any()).
			Return(int64(0), errors.New("db down"))

		assert.Error(t, sweeper.RunOnce(context.Background()))
	})
}
