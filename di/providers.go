package di

import (
	"roost/config"
	"roost/internal/domains/booking/policy"
)

func provideCancellationPolicy(cfg *config.Config) policy.CancellationPolicy {
	return policy.NewWindow(cfg.Booking.CancelCutoffHours)
}
