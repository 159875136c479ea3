package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roost/internal/domains/booking/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from model.Status
		to   model.Status
		want bool
	}{
		{"pending to confirmed", model.StatusPendingPayment, model.StatusConfirmed, true},
		{"pending to canceled", model.StatusPendingPayment, model.StatusCanceled, true},
		{"pending to completed", model.StatusPendingPayment, model.StatusCompleted, false},
		{"confirmed to completed", model.StatusConfirmed, model.StatusCompleted, true},
		{"confirmed to canceled", model.StatusConfirmed, model.StatusCanceled, true},
		{"confirmed to pending", model.StatusConfirmed, model.StatusPendingPayment, false},
		{"canceled is terminal", model.StatusCanceled, model.StatusConfirmed, false},
		{"completed is terminal", model.StatusCompleted, model.StatusCanceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, model.StatusPendingPayment.Terminal())
	assert.False(t, model.StatusConfirmed.Terminal())
	assert.True(t, model.StatusCanceled.Terminal())
	assert.True(t, model.StatusCompleted.Terminal())
}

func TestStatus_HoldsInventory(t *testing.T) {
	assert.True(t, model.StatusPendingPayment.HoldsInventory())
	assert.True(t, model.StatusConfirmed.HoldsInventory())
	assert.False(t, model.StatusCanceled.HoldsInventory())
	assert.False(t, model.StatusCompleted.HoldsInventory())
}

func TestOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2030, 5, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical ranges", 1, 4, 1, 4, true},
		{"partial overlap", 1, 4, 3, 6, true},
		{"nested range", 1, 10, 3, 5, true},
		{"back to back, checkout meets check-in", 1, 4, 4, 7, false},
		{"back to back, reversed order", 4, 7, 1, 4, false},
		{"disjoint ranges", 1, 3, 5, 8, false},
		{"single night against its boundary", 3, 4, 4, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd)))
			assert.Equal(t, tt.want, model.Overlaps(day(tt.bStart), day(tt.bEnd), day(tt.aStart), day(tt.aEnd)))
		})
	}
}

func TestNights(t *testing.T) {
	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, model.Nights(start, start.AddDate(0, 0, 1)))
	assert.Equal(t, 3, model.Nights(start, start.AddDate(0, 0, 3)))

	booking := model.Booking{StartDate: start, EndDate: start.AddDate(0, 0, 7)}
	assert.Equal(t, 7, booking.Nights())
}
