package dto

import (
	"time"

	"github.com/google/uuid"

	"roost/internal/domains/booking/model"
	"roost/shared/constant"
	gDto "roost/shared/dto"
	gModel "roost/shared/model"
	"roost/shared/timezone"
)

type CreateBookingRequest struct {
	PropertyID     string `json:"property_id"     validate:"required,uuid"`
	StartDate      string `json:"start_date"      validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date"        validate:"required,datetime=2006-01-02"`
	Guests         int    `json:"guests"          validate:"required,min=1"`
	Currency       string `json:"currency"        validate:"omitempty,len=3"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=64"`
}

// Dates parses the half-open stay range. Validation of ordering and stay
// length happens in the service against configured bounds.
func (c *CreateBookingRequest) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(constant.DateOnlyFormat, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err = time.Parse(constant.DateOnlyFormat, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func (c *CreateBookingRequest) ToModel(guestID, idempotencyKey string, start, end time.Time) model.Booking {
	return model.Booking{
		ID:             uuid.NewString(),
		PropertyID:     c.PropertyID,
		GuestID:        guestID,
		StartDate:      start,
		EndDate:        end,
		Status:         model.StatusPendingPayment,
		Guests:         c.Guests,
		IdempotencyKey: idempotencyKey,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  guestID,
			ModifiedBy: guestID,
		},
	}
}

type CreateBookingResponse struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
	TotalAmount  int64  `json:"total_amount"`
	Currency     string `json:"currency"`
}

type PriceBreakdown struct {
	NightlyRate int64 `json:"nightly_rate"`
	Nights      int   `json:"nights"`
	CleaningFee int64 `json:"cleaning_fee"`
	ServiceFee  int64 `json:"service_fee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

type BookingResponse struct {
	ID           string         `json:"id"`
	PropertyID   string         `json:"property_id"`
	GuestID      string         `json:"guest_id"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	Status       string         `json:"status"`
	Guests       int            `json:"guests"`
	Currency     string         `json:"currency"`
	CancelReason string         `json:"cancel_reason,omitempty"`
	Price        PriceBreakdown `json:"price"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking) {
	r.ID = booking.ID
	r.PropertyID = booking.PropertyID
	r.GuestID = booking.GuestID
	r.StartDate = booking.StartDate.Format(constant.DateOnlyFormat)
	r.EndDate = booking.EndDate.Format(constant.DateOnlyFormat)
	r.Status = string(booking.Status)
	r.Guests = booking.Guests
	r.Currency = booking.Currency
	r.CancelReason = booking.CancelReason
	r.Price = PriceBreakdown{
		NightlyRate: booking.NightlyRate,
		Nights:      booking.Nights(),
		CleaningFee: booking.CleaningFee,
		ServiceFee:  booking.ServiceFee,
		Discount:    booking.Discount,
		Total:       booking.TotalAmount,
	}
	r.Metadata.FromModel(booking.Metadata)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type CancelBookingResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}
