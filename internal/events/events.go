package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/kafka"
	"roost/shared/timezone"
)

// BookingStatusChanged notifies downstream consumers (notification delivery,
// search index refresh) of a lifecycle transition.
type BookingStatusChanged struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PayoutScheduled asks the payout pipeline to pay the host for a confirmed
// booking. Fire-and-forget; payout accounting is outside this core.
type PayoutScheduled struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishBookingStatusChanged(ctx context.Context, event BookingStatusChanged)
	PublishPayoutScheduled(ctx context.Context, event PayoutScheduled)
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
}

func NewPublisher(client kafka.Client, cfg *config.Config) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
	}
}

func (p *publisherImpl) PublishBookingStatusChanged(ctx context.Context, event BookingStatusChanged) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = timezone.Now()
	}

	err := p.client.SendMessages(ctx, p.cfg.Kafka.Topics.BookingStatusChanged, kafka.Message{
		Key:   event.BookingID,
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).Str("bookingID", event.BookingID).Msg("failed to publish booking status change")
	}
}

func (p *publisherImpl) PublishPayoutScheduled(ctx context.Context, event PayoutScheduled) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = timezone.Now()
	}

	err := p.client.SendMessages(ctx, p.cfg.Kafka.Topics.PayoutScheduled, kafka.Message{
		Key:   event.BookingID,
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).Str("bookingID", event.BookingID).Msg("failed to publish payout schedule")
	}
}
