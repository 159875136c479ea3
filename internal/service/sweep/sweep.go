package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/otel"
	bookingService "roost/internal/domains/booking/service"
	idemService "roost/internal/domains/idempotency/service"
	"roost/shared/constant"
)

// Sweeper is the background maintenance loop: it reclaims inventory from
// expired holds, completes finished stays and purges aged idempotency records.
type Sweeper interface {
	// Run blocks until ctx is canceled, sweeping at the configured interval.
	Run(ctx context.Context)
	// RunOnce executes a single sweep pass.
	RunOnce(ctx context.Context) error
}

type sweeperImpl struct {
	bookings bookingService.Booking
	idem     idemService.Idempotency
	cfg      *config.Config
	otel     otel.Otel
}

func New(bookings bookingService.Booking, idem idemService.Idempotency, cfg *config.Config, ot otel.Otel) Sweeper {
	return &sweeperImpl{
		bookings: bookings,
		idem:     idem,
		cfg:      cfg,
		otel:     ot,
	}
}

func (s *sweeperImpl) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Booking.SweepIntervalSeconds) * time.Second

	log.Info().Dur("interval", interval).Msg("hold expiry sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("hold expiry sweeper stopped")

			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("sweep pass failed")
			}
		}
	}
}

func (s *sweeperImpl) RunOnce(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelSweepScopeName, constant.OtelSweepScopeName+".RunOnce")
	defer scope.End()
	defer scope.TraceIfError(err)

	expired, err := s.bookings.ExpireStaleHolds(ctx)
	if err != nil {
		return err
	}

	completed, err := s.bookings.CompleteFinishedStays(ctx)
	if err != nil {
		return err
	}

	purged, err := s.idem.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	if expired > 0 || completed > 0 || purged > 0 {
		log.Info().
			Int("expiredHolds", expired).
			Int("completedStays", completed).
			Int64("purgedIdempotencyRecords", purged).
			Msg("sweep pass finished")
	}

	return nil
}
