package model

import (
	"time"

	"roost/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldPropertyID  = "property_id"
	FieldGuestID     = "guest_id"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldStatus      = "status"
	FieldTotalAmount = "total_amount"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCanceled       Status = "canceled"
	StatusCompleted      Status = "completed"
)

const (
	CancelReasonGuestRequest        = "guest_request"
	CancelReasonHostRequest         = "host_request"
	CancelReasonPaymentFailed       = "payment_failed"
	CancelReasonPaymentCanceled     = "payment_canceled"
	CancelReasonPaymentIntentFailed = "payment_intent_failed"
	CancelReasonExpired             = "expired"
)

// Terminal reports whether no further transitions are legal from s.
func (s Status) Terminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// HoldsInventory reports whether a booking in status s occupies its date range
// in the availability ledger. Holds exist exactly for these two statuses.
func (s Status) HoldsInventory() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed, StatusCanceled},
	StatusConfirmed:      {StatusCompleted, StatusCanceled},
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// Booking is one reservation attempt. Rows are never deleted; canceled and
// completed bookings are retained for audit.
type Booking struct {
	ID             string    `db:"id"`
	PropertyID     string    `db:"property_id"`
	GuestID        string    `db:"guest_id"`
	StartDate      time.Time `db:"start_date"`
	EndDate        time.Time `db:"end_date"`
	Status         Status    `db:"status"`
	Guests         int       `db:"guests"`
	NightlyRate    int64     `db:"nightly_rate"`
	CleaningFee    int64     `db:"cleaning_fee"`
	ServiceFee     int64     `db:"service_fee"`
	Discount       int64     `db:"discount"`
	TotalAmount    int64     `db:"total_amount"`
	Currency       string    `db:"currency"`
	CancelReason   string    `db:"cancel_reason"`
	IdempotencyKey string    `db:"idempotency_key"`
	model.Metadata
}

// Nights returns the stay length of the half-open range [StartDate, EndDate).
func (b *Booking) Nights() int {
	return Nights(b.StartDate, b.EndDate)
}

func Nights(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back stays sharing a checkout/check-in
// day never overlap. The availability ledger's SQL predicate and the
// bookings_no_overlap constraint encode the same comparison.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
