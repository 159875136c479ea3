package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roost/internal/domains/booking/model"
	"roost/internal/domains/booking/model/dto"
	gModel "roost/shared/model"
)

func TestCreateBookingRequest_Dates(t *testing.T) {
	t.Run("parses a valid range", func(t *testing.T) {
		req := dto.CreateBookingRequest{StartDate: "2030-05-01", EndDate: "2030-05-04"}

		start, end, err := req.Dates()

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		req := dto.CreateBookingRequest{StartDate: "05/01/2030", EndDate: "2030-05-04"}

		_, _, err := req.Dates()

		assert.Error(t, err)
	})
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	req := dto.CreateBookingRequest{
		PropertyID: "4b2861c8-5726-4c48-9b89-0f34d00ba437",
		Guests:     2,
	}
	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC)

	booking := req.ToModel("guest-1", "idem-key-1", start, end)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, req.PropertyID, booking.PropertyID)
	assert.Equal(t, "guest-1", booking.GuestID)
	assert.Equal(t, model.StatusPendingPayment, booking.Status)
	assert.Equal(t, "idem-key-1", booking.IdempotencyKey)
	assert.Equal(t, 2, booking.Guests)
	assert.Equal(t, "guest-1", booking.Metadata.CreatedBy)
}

func TestBookingResponse_FromModel(t *testing.T) {
	booking := model.Booking{
		ID:           "booking-1",
		PropertyID:   "property-1",
		GuestID:      "guest-1",
		StartDate:    time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusConfirmed,
		Guests:       2,
		Currency:     "USD",
		NightlyRate:  10000,
		CleaningFee:  2000,
		ServiceFee:   1500,
		TotalAmount:  33500,
		CancelReason: "",
		Metadata: gModel.Metadata{
			CreatedAt:  time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC),
			ModifiedAt: time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	var res dto.BookingResponse
	res.FromModel(booking)

	assert.Equal(t, "booking-1", res.ID)
	assert.Equal(t, "2030-05-01", res.StartDate)
	assert.Equal(t, "2030-05-04", res.EndDate)
	assert.Equal(t, string(model.StatusConfirmed), res.Status)
	assert.Equal(t, 3, res.Price.Nights)
	assert.Equal(t, int64(33500), res.Price.Total)
	assert.Empty(t, res.CancelReason)
}
