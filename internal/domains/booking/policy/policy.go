package policy

import (
	"fmt"
	"time"

	"roost/internal/domains/booking/model"
	"roost/shared/failure"
)

// CancellationPolicy decides whether a cancellation requested at now is
// permitted for a booking starting at startDate in the given status.
type CancellationPolicy interface {
	Allow(now, startDate time.Time, status model.Status) error
}

type window struct {
	cutoff time.Duration
}

// NewWindow returns the default policy: bookings awaiting payment are
// cancelable at any time, confirmed bookings only until cutoffHours before
// check-in.
func NewWindow(cutoffHours int) CancellationPolicy {
	return &window{
		cutoff: time.Duration(cutoffHours) * time.Hour,
	}
}

func (w *window) Allow(now, startDate time.Time, status model.Status) error {
	if status == model.StatusPendingPayment {
		return nil
	}

	deadline := startDate.Add(-w.cutoff)
	if now.After(deadline) {
		return failure.Forbidden(fmt.Sprintf("cancellation is only allowed until %s before check-in", w.cutoff)) //nolint:wrapcheck
	}

	return nil
}
