package models

import "time"

type Car struct {
	ID                   int64     `json:"id"`
	OwnerID              int64     `json:"ownerId"`
	Brand                string    `json:"brand"`
	Model                string    `json:"model"`
	Year                 int       `json:"year"`
	PlateNumber          string    `json:"plateNumber"`
	PricePerDay          int64     `json:"pricePerDay"`
	Available            bool      `json:"available"`
	UnavailabilityReason string    `json:"unavailabilityReason,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
