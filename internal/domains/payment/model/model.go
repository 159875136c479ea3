package model

import (
	"time"

	"roost/shared/model"
)

const (
	RecordTableName = "payment_records"
	EventTableName  = "webhook_events"
	EntityName      = "payment record"
)

// Recognized webhook event kinds. Anything else is acknowledged and ignored.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
	EventPaymentCanceled  = "payment_canceled"
)

const (
	IntentStatusRequiresPayment = "requires_payment"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusFailed          = "failed"
	IntentStatusCanceled        = "canceled"
)

// Record is one payment attempt at the gateway, owned by the payment adapter
// and referenced, never owned, by the booking lifecycle.
type Record struct {
	ID        string `db:"id"`
	BookingID string `db:"booking_id"`
	Provider  string `db:"provider"`
	IntentID  string `db:"intent_id"`
	Status    string `db:"status"`
	Amount    int64  `db:"amount"`
	Currency  string `db:"currency"`
	model.Metadata
}

// Event logs a processed provider event identifier for webhook dedup.
type Event struct {
	EventID    string    `db:"event_id"`
	ReceivedAt time.Time `db:"received_at"`
}

// WebhookEvent is the decoded provider payload.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		IntentID  string `json:"intent_id"`
		BookingID string `json:"booking_id"`
		Reason    string `json:"reason,omitempty"`
	} `json:"data"`
}
