package models

import "time"

type Driver struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	Rating         float64    `json:"rating"`
	Experience     int        `json:"experience"`
	Available      bool       `json:"available"`
	Active         bool       `json:"active"`
	ServiceOptions string     `json:"serviceOptions,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	LocatedAt      *time.Time `json:"locatedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// DriverAssignment commits a specific driver to a booking after creation.
type DriverAssignment struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"bookingId"`
	DriverID   int64     `json:"driverId"`
	AssignedBy int64     `json:"assignedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
