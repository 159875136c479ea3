package model

import (
	"roost/shared/model"
)

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID     = "id"
	FieldActive = "active"
)

// Property is the read-only projection of the property management collaborator
// that the booking core needs: enough to authorize, price and validate a stay.
type Property struct {
	ID            string `db:"id"`
	HostID        string `db:"host_id"`
	Name          string `db:"name"`
	Active        bool   `db:"active"`
	MaxGuests     int    `db:"max_guests"`
	PricePerNight int64  `db:"price_per_night"`
	CleaningFee   int64  `db:"cleaning_fee"`
	Currency      string `db:"currency"`
	model.Metadata
}
