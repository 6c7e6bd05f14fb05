package services

import (
	"fmt"

	"rental-backend/internal/domain"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// LocationService relays a driver's live position onto the driver record
// and, best-effort, onto the driver's active booking for client polling.
type LocationService struct {
	Drivers   repositories.DriverRepository
	Bookings  repositories.BookingRepository
	RequestID string
}

// UpdateLocation is last-write-wins; a failure to mirror the position onto
// the booking never fails the driver update.
func (s LocationService) UpdateLocation(driverID int64, lat, lng float64) error {
	if driverID <= 0 {
		return domain.ValidationError{Field: "driverId", Msg: "invalid id"}
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.ValidationError{Field: "location", Msg: "coordinates out of range"}
	}

	now := utils.NowUTC()
	if err := s.Drivers.UpdateLocation(driverID, lat, lng, now); err != nil {
		return err
	}

	if booking, err := s.Bookings.ActiveByDriver(driverID); err == nil {
		if err := s.Bookings.SetDriverLocation(booking.ID, lat, lng, now); err != nil {
			utils.LogEvent(s.RequestID, "location", "relay",
				fmt.Sprintf("booking copy failed booking_id=%d: %v", booking.ID, err))
		}
	}
	return nil
}
