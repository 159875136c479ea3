package model

import (
	"time"
)

const (
	TableName  = "idempotency_records"
	EntityName = "idempotency record"
)

type State string

const (
	// StateInFlight marks a request whose booking creation has started but not
	// resolved. It is written before the availability ledger is touched, so a
	// crash mid-request leaves a detectable marker instead of silent
	// duplication.
	StateInFlight  State = "in_flight"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Record maps (idempotency key, guest id) to the outcome of a prior
// booking-creation attempt. Completed records are never mutated; they expire
// after the retention window.
type Record struct {
	Key          string    `db:"idempotency_key"`
	GuestID      string    `db:"guest_id"`
	Fingerprint  string    `db:"fingerprint"`
	State        State     `db:"state"`
	BookingID    string    `db:"booking_id"`
	ResponseBody []byte    `db:"response_body"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}
