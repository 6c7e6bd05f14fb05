package services

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	intconfig "rental-backend/internal/config"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// BookingService owns the booking lifecycle: creation with availability
// coupling, the status state machine, and driver assignment.
type BookingService struct {
	DB            *sql.DB
	Bookings      repositories.BookingRepository
	Cars          repositories.CarRepository
	Drivers       repositories.DriverRepository
	Reservations  repositories.ReservationRepository
	Notifications repositories.NotificationRepository
	RequestID     string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type CreateBookingRequest struct {
	CarID           *int64
	DriverID        *int64
	CustomerID      int64
	BookingType     string
	PickupLocation  string
	DropoffLocation string
	StartDate       time.Time
	EndDate         time.Time
	PaymentMethod   string
	Extras          []models.BookingExtra
}

// transitions is the booking state machine. Statuses missing from the map
// are terminal: no move out of them is ever allowed.
var transitions = map[string][]string{
	string(domain.StatusPending):    {string(domain.StatusApproved), string(domain.StatusRejected), string(domain.StatusCancelled)},
	string(domain.StatusApproved):   {string(domain.StatusInProgress), string(domain.StatusCompleted), string(domain.StatusCancelled)},
	string(domain.StatusInProgress): {string(domain.StatusCompleted), string(domain.StatusCancelled)},
}

func transitionAllowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func isTerminal(status string) bool {
	switch status {
	case string(domain.StatusRejected), string(domain.StatusCancelled), string(domain.StatusCompleted):
		return true
	}
	return false
}

// validateResources enforces the bookingType/resource pairing before any
// write happens. A named driver stays optional for driver-backed types
// because assignment may be deferred to AssignDriver.
func validateResources(req CreateBookingRequest) error {
	switch req.BookingType {
	case string(domain.BookingCarOnly):
		if req.CarID == nil || *req.CarID <= 0 {
			return domain.ValidationError{Field: "carId", Msg: "required for car-only bookings"}
		}
		if req.DriverID != nil {
			return domain.ValidationError{Field: "driverId", Msg: "not allowed for car-only bookings"}
		}
	case string(domain.BookingDriverOnly):
		if req.CarID != nil {
			return domain.ValidationError{Field: "carId", Msg: "not allowed for driver-only bookings"}
		}
	case string(domain.BookingCarWithDriver):
		if req.CarID == nil || *req.CarID <= 0 {
			return domain.ValidationError{Field: "carId", Msg: "required for car-with-driver bookings"}
		}
	default:
		return domain.ValidationError{Field: "bookingType", Msg: "must be car-only, car-with-driver or driver-only"}
	}
	if req.CustomerID <= 0 {
		return domain.ValidationError{Field: "customerId", Msg: "required"}
	}
	return nil
}

// Create validates, prices and persists a booking. The availability check,
// the availability flip, the reservation interval, the booking row and the
// owner notification all commit in one transaction.
func (s BookingService) Create(req CreateBookingRequest) (int64, error) {
	if err := validateResources(req); err != nil {
		return 0, err
	}
	if !req.EndDate.After(req.StartDate) {
		return 0, domain.ValidationError{Field: "endDate", Msg: "must be after start date"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	var car *models.Car
	if req.CarID != nil {
		c, err := s.Cars.GetForUpdate(tx, *req.CarID)
		if err != nil {
			return 0, err
		}
		if !c.Available {
			return 0, domain.ConflictError{Resource: "car", Msg: "not available"}
		}
		car = &c
	}

	needsDriver := req.BookingType != string(domain.BookingCarOnly)
	var driver *models.Driver
	if needsDriver {
		if req.DriverID != nil {
			d, err := s.Drivers.GetForUpdate(tx, *req.DriverID)
			if err != nil {
				return 0, err
			}
			if !d.Available || !d.Active {
				return 0, domain.ConflictError{Resource: "driver", Msg: "not available"}
			}
			driver = &d
		} else {
			// No driver named: only verify the pool is non-empty,
			// assignment happens later via AssignDriver.
			n, err := s.Drivers.CountAvailable(tx)
			if err != nil {
				return 0, domain.InternalError{Err: err}
			}
			if n == 0 {
				return 0, domain.NoResourceError{Resource: "driver"}
			}
		}
	}

	quote, err := ComputeQuote(car, driver, req.Extras, req.StartDate, req.EndDate)
	if err != nil {
		return 0, err
	}

	booking := models.Booking{
		CarID:           req.CarID,
		DriverID:        req.DriverID,
		CustomerID:      req.CustomerID,
		BookingType:     req.BookingType,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		BasePrice:       quote.Subtotal,
		TaxAmount:       quote.Tax,
		TotalPrice:      quote.Total,
		Status:          string(domain.StatusPending),
		PaymentStatus:   string(domain.PayPending),
		PaymentMethod:   req.PaymentMethod,
	}

	bookingID, err := s.Bookings.Insert(tx, booking)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	if len(req.Extras) > 0 {
		if err := s.Bookings.InsertExtras(tx, bookingID, req.Extras); err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}

	if car != nil {
		if err := s.Cars.SetAvailability(tx, car.ID, false, "booked #"+strconv.FormatInt(bookingID, 10)); err != nil {
			return 0, domain.InternalError{Err: err}
		}
		if _, err := s.Reservations.Insert(tx, models.Reservation{
			CarID:     car.ID,
			BookingID: bookingID,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		}); err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}
	if driver != nil {
		if err := s.Drivers.SetAvailability(tx, driver.ID, false); err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}

	if car != nil {
		if _, err := s.Notifications.Insert(tx, models.Notification{
			UserID:  car.OwnerID,
			Title:   "New booking request",
			Message: fmt.Sprintf("Booking #%d requested for your %s %s (%s to %s)", bookingID, car.Brand, car.Model, utils.FormatDate(req.StartDate), utils.FormatDate(req.EndDate)),
			Type:    "booking_created",
		}); err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}
	if driver != nil {
		if _, err := s.Notifications.Insert(tx, models.Notification{
			UserID:  driver.UserID,
			Title:   "New booking request",
			Message: fmt.Sprintf("Booking #%d requested with you as driver (%s to %s)", bookingID, utils.FormatDate(req.StartDate), utils.FormatDate(req.EndDate)),
			Type:    "booking_created",
		}); err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d type=%s total=%d", bookingID, req.BookingType, quote.Total))
	return bookingID, nil
}

// UpdateStatus applies one transition of the state machine after checking
// the actor against the authorization matrix. Terminal transitions revert
// resource availability in the same transaction.
func (s BookingService) UpdateStatus(bookingID int64, newStatus, reason string, actor domain.RequestContext) error {
	if bookingID <= 0 {
		return domain.ValidationError{Field: "bookingId", Msg: "invalid id"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	booking, err := s.Bookings.GetForUpdate(tx, bookingID)
	if err != nil {
		return err
	}

	if err := authorizeTransition(booking, newStatus, actor); err != nil {
		return err
	}
	if !transitionAllowed(booking.Status, newStatus) {
		return domain.InvalidTransitionError{From: booking.Status, To: newStatus}
	}

	cancellationReason := booking.CancellationReason
	if newStatus == string(domain.StatusCancelled) {
		cancellationReason = reason
	}
	if err := s.Bookings.UpdateStatus(tx, bookingID, newStatus, cancellationReason); err != nil {
		return err
	}

	// Any terminal status releases the resources, rejected included.
	if isTerminal(newStatus) {
		if booking.CarID != nil {
			if err := s.Cars.SetAvailability(tx, *booking.CarID, true, ""); err != nil {
				return domain.InternalError{Err: err}
			}
			if err := s.Reservations.DeleteByBooking(tx, *booking.CarID, bookingID); err != nil {
				return domain.InternalError{Err: err}
			}
		}
		if booking.DriverID != nil {
			if err := s.Drivers.SetAvailability(tx, *booking.DriverID, true); err != nil {
				return domain.InternalError{Err: err}
			}
		}
	}

	if _, err := s.Notifications.Insert(tx, models.Notification{
		UserID:  booking.CustomerID,
		Title:   "Booking " + newStatus,
		Message: fmt.Sprintf("Your booking #%d is now %s", bookingID, newStatus),
		Type:    "booking_status_changed",
	}); err != nil {
		return domain.InternalError{Err: err}
	}
	if booking.DriverID != nil {
		if d, err := s.Drivers.GetByID(*booking.DriverID); err == nil {
			if _, err := s.Notifications.Insert(tx, models.Notification{
				UserID:  d.UserID,
				Title:   "Booking " + newStatus,
				Message: fmt.Sprintf("Booking #%d you are assigned to is now %s", bookingID, newStatus),
				Type:    "booking_status_changed",
			}); err != nil {
				return domain.InternalError{Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "update_status",
		fmt.Sprintf("booking_id=%d from=%s to=%s actor=%d", bookingID, booking.Status, newStatus, actor.UserID))
	return nil
}

// authorizeTransition implements the role/ownership matrix: customers may
// only cancel their own booking, managers and admins approve or reject,
// drivers complete.
func authorizeTransition(b models.Booking, newStatus string, actor domain.RequestContext) error {
	switch newStatus {
	case string(domain.StatusCancelled):
		if actor.Role != domain.RoleCustomer || actor.UserID != b.CustomerID {
			return domain.AuthorizationError{Action: "cancel this booking"}
		}
	case string(domain.StatusApproved), string(domain.StatusRejected):
		if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
			return domain.AuthorizationError{Action: "approve or reject bookings"}
		}
	case string(domain.StatusCompleted):
		if actor.Role != domain.RoleDriver {
			return domain.AuthorizationError{Action: "complete bookings"}
		}
	case string(domain.StatusInProgress):
		if actor.Role != domain.RoleDriver && actor.Role != domain.RoleManager && actor.Role != domain.RoleAdmin {
			return domain.AuthorizationError{Action: "start bookings"}
		}
	default:
		return domain.ValidationError{Field: "status", Msg: "unknown status " + newStatus}
	}
	return nil
}

// AssignDriver commits a specific driver to a pending or approved booking
// whose type requires one, flipping the driver unavailable atomically.
func (s BookingService) AssignDriver(bookingID, driverID int64, actor domain.RequestContext) error {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return domain.AuthorizationError{Action: "assign drivers"}
	}
	if bookingID <= 0 || driverID <= 0 {
		return domain.ValidationError{Field: "bookingId", Msg: "invalid id"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	booking, err := s.Bookings.GetForUpdate(tx, bookingID)
	if err != nil {
		return err
	}
	if booking.BookingType == string(domain.BookingCarOnly) {
		return domain.ValidationError{Field: "bookingType", Msg: "car-only bookings take no driver"}
	}
	if booking.DriverID != nil {
		return domain.ConflictError{Resource: "booking", Msg: "driver already assigned"}
	}
	if isTerminal(booking.Status) {
		return domain.ConflictError{Resource: "booking", Msg: "booking already closed"}
	}

	driver, err := s.Drivers.GetForUpdate(tx, driverID)
	if err != nil {
		return err
	}
	if !driver.Available || !driver.Active {
		return domain.ConflictError{Resource: "driver", Msg: "not available"}
	}

	if err := s.Drivers.SetAvailability(tx, driverID, false); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := s.Bookings.SetDriver(tx, bookingID, driverID); err != nil {
		return domain.InternalError{Err: err}
	}
	if _, err := s.Drivers.InsertAssignment(tx, models.DriverAssignment{
		BookingID:  bookingID,
		DriverID:   driverID,
		AssignedBy: actor.UserID,
	}); err != nil {
		return domain.InternalError{Err: err}
	}
	if _, err := s.Notifications.Insert(tx, models.Notification{
		UserID:  driver.UserID,
		Title:   "New assignment",
		Message: fmt.Sprintf("You have been assigned to booking #%d", bookingID),
		Type:    "driver_assigned",
	}); err != nil {
		return domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "assign_driver",
		fmt.Sprintf("booking_id=%d driver_id=%d by=%d", bookingID, driverID, actor.UserID))
	return nil
}
