package models

import "time"

// Booking is a customer's request to reserve a car and/or driver for a
// date range. CarID/DriverID presence must agree with BookingType.
type Booking struct {
	ID                 int64      `json:"id"`
	CarID              *int64     `json:"carId,omitempty"`
	DriverID           *int64     `json:"driverId,omitempty"`
	CustomerID         int64      `json:"customerId"`
	ManagerID          *int64     `json:"managerId,omitempty"`
	BookingType        string     `json:"bookingType"`
	PickupLocation     string     `json:"pickupLocation"`
	DropoffLocation    string     `json:"dropoffLocation"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	BasePrice          int64      `json:"basePrice"`
	TaxAmount          int64      `json:"taxAmount"`
	TotalPrice         int64      `json:"totalPrice"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"paymentStatus"`
	PaymentMethod      string     `json:"paymentMethod,omitempty"`
	TransactionID      string     `json:"transactionId,omitempty"`
	InvoiceNumber      string     `json:"invoiceNumber,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	DriverLat          *float64   `json:"driverLat,omitempty"`
	DriverLng          *float64   `json:"driverLng,omitempty"`
	DriverLocatedAt    *time.Time `json:"driverLocatedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	Extras []BookingExtra `json:"extras,omitempty"`
}

// BookingExtra is an add-on line (child seat, GPS, ...) priced per unit.
type BookingExtra struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"bookingId"`
	ExtraID   string `json:"extraId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Reservation marks a car as taken for a date range. Rows are removed by
// exact booking match when the booking reaches a terminal status.
type Reservation struct {
	ID        int64     `json:"id"`
	CarID     int64     `json:"carId"`
	BookingID int64     `json:"bookingId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}
