package services

import (
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/utils"
)

const (
	// TaxPercent applies to the subtotal of every booking and invoice.
	TaxPercent = 10
	// DriverRateFactor converts years of experience to an hourly rate.
	DriverRateFactor = 10
	// DriverHoursPerDay is the billable driving time per rental day.
	DriverHoursPerDay = 8
)

// Quote breaks pricing down so both booking creation and the public quote
// endpoint share one computation.
type Quote struct {
	Days         int64 `json:"days"`
	CarAmount    int64 `json:"carAmount"`
	DriverAmount int64 `json:"driverAmount"`
	ExtrasAmount int64 `json:"extrasAmount"`
	Subtotal     int64 `json:"subtotal"`
	Tax          int64 `json:"tax"`
	Total        int64 `json:"total"`
}

// ComputeQuote prices a rental over a date range. Partial days round up,
// a driver bills experience*10 per hour for 8 hours a day, tax is 10%.
func ComputeQuote(car *models.Car, driver *models.Driver, extras []models.BookingExtra, start, end time.Time) (Quote, error) {
	if !end.After(start) {
		return Quote{}, domain.ValidationError{Field: "endDate", Msg: "must be after start date"}
	}

	q := Quote{Days: utils.RentalDays(start, end)}
	if car != nil {
		q.CarAmount = car.PricePerDay * q.Days
	}
	if driver != nil {
		q.DriverAmount = int64(driver.Experience) * DriverRateFactor * DriverHoursPerDay * q.Days
	}
	for _, e := range extras {
		q.ExtrasAmount += int64(e.Quantity) * e.Price
	}

	q.Subtotal = q.CarAmount + q.DriverAmount + q.ExtrasAmount
	q.Tax = utils.PercentOf(q.Subtotal, TaxPercent)
	q.Total = q.Subtotal + q.Tax
	return q, nil
}
