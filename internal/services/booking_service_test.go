package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
)

func ptr(v int64) *int64 { return &v }

func newBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := BookingService{
		DB:            db,
		Bookings:      repositories.BookingRepository{DB: db},
		Cars:          repositories.CarRepository{DB: db},
		Drivers:       repositories.DriverRepository{DB: db},
		Reservations:  repositories.ReservationRepository{DB: db},
		Notifications: repositories.NotificationRepository{DB: db},
	}
	return svc, mock, func() { db.Close() }
}

func carRow(id, ownerID int64, pricePerDay int64, available bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "brand", "model", "year", "plate_number",
		"price_per_day", "available", "unavailability_reason", "created_at", "updated_at",
	}).AddRow(id, ownerID, "Toyota", "RAV4", 2022, "RAD 123 A", pricePerDay, available, "", now, now)
}

func TestValidateResourcesMatrix(t *testing.T) {
	cases := []struct {
		name    string
		req     CreateBookingRequest
		wantErr bool
	}{
		{"car-only ok", CreateBookingRequest{BookingType: "car-only", CarID: ptr(1), CustomerID: 5}, false},
		{"car-only missing car", CreateBookingRequest{BookingType: "car-only", CustomerID: 5}, true},
		{"car-only with driver", CreateBookingRequest{BookingType: "car-only", CarID: ptr(1), DriverID: ptr(2), CustomerID: 5}, true},
		{"driver-only ok", CreateBookingRequest{BookingType: "driver-only", CustomerID: 5}, false},
		{"driver-only with car", CreateBookingRequest{BookingType: "driver-only", CarID: ptr(1), CustomerID: 5}, true},
		{"car-with-driver ok without driver", CreateBookingRequest{BookingType: "car-with-driver", CarID: ptr(1), CustomerID: 5}, false},
		{"car-with-driver missing car", CreateBookingRequest{BookingType: "car-with-driver", CustomerID: 5}, true},
		{"unknown type", CreateBookingRequest{BookingType: "boat", CustomerID: 5}, true},
		{"missing customer", CreateBookingRequest{BookingType: "car-only", CarID: ptr(1)}, true},
	}
	for _, c := range cases {
		err := validateResources(c.req)
		if c.wantErr && !domain.IsValidation(err) {
			t.Errorf("%s: expected ValidationError, got %v", c.name, err)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to string }{
		{"pending", "approved"}, {"pending", "rejected"}, {"pending", "cancelled"},
		{"approved", "in-progress"}, {"approved", "completed"}, {"approved", "cancelled"},
		{"in-progress", "completed"}, {"in-progress", "cancelled"},
	}
	for _, c := range allowed {
		if !transitionAllowed(c.from, c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to string }{
		{"pending", "completed"}, {"pending", "in-progress"},
		{"rejected", "approved"}, {"cancelled", "pending"},
		{"completed", "in-progress"}, {"completed", "cancelled"},
		{"approved", "pending"},
	}
	for _, c := range denied {
		if transitionAllowed(c.from, c.to) {
			t.Errorf("%s -> %s should be denied", c.from, c.to)
		}
	}
}

func TestAuthorizeTransitionMatrix(t *testing.T) {
	booking := models.Booking{ID: 9, CustomerID: 42}

	cases := []struct {
		name   string
		status string
		actor  domain.RequestContext
		wantOK bool
	}{
		{"owner cancels", "cancelled", domain.RequestContext{UserID: 42, Role: domain.RoleCustomer}, true},
		{"other customer cancels", "cancelled", domain.RequestContext{UserID: 7, Role: domain.RoleCustomer}, false},
		{"admin cancels", "cancelled", domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}, false},
		{"manager approves", "approved", domain.RequestContext{UserID: 1, Role: domain.RoleManager}, true},
		{"admin rejects", "rejected", domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}, true},
		{"customer approves", "approved", domain.RequestContext{UserID: 42, Role: domain.RoleCustomer}, false},
		{"driver completes", "completed", domain.RequestContext{UserID: 3, Role: domain.RoleDriver}, true},
		{"manager completes", "completed", domain.RequestContext{UserID: 1, Role: domain.RoleManager}, false},
		{"driver starts", "in-progress", domain.RequestContext{UserID: 3, Role: domain.RoleDriver}, true},
		{"customer starts", "in-progress", domain.RequestContext{UserID: 42, Role: domain.RoleCustomer}, false},
	}
	for _, c := range cases {
		err := authorizeTransition(booking, c.status, c.actor)
		if c.wantOK && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.wantOK && !domain.IsAuthorization(err) {
			t.Errorf("%s: expected AuthorizationError, got %v", c.name, err)
		}
	}
}

func TestCreateBookingValidationWritesNothing(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	_, err := svc.Create(CreateBookingRequest{
		BookingType: "car-only",
		CustomerID:  5,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(48 * time.Hour),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestCreateBookingUnavailableCarConflicts(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(carRow(1, 10, 50000, false))
	mock.ExpectRollback()

	_, err := svc.Create(CreateBookingRequest{
		BookingType: "car-only",
		CarID:       ptr(1),
		CustomerID:  5,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(48 * time.Hour),
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateBookingCarOnlyCommitsAtomically(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(carRow(1, 10, 50000, true))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE cars SET available=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO car_reservations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := svc.Create(CreateBookingRequest{
		BookingType: "car-only",
		CarID:       ptr(1),
		CustomerID:  5,
		StartDate:   day("2026-03-01"),
		EndDate:     day("2026-03-04"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != 77 {
		t.Fatalf("booking id = %d, want 77", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateBookingDriverOnlyEmptyPool(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM drivers WHERE available=1 AND active=1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.Create(CreateBookingRequest{
		BookingType: "driver-only",
		CustomerID:  5,
		StartDate:   day("2026-03-01"),
		EndDate:     day("2026-03-03"),
	})
	if !domain.IsNoResource(err) {
		t.Fatalf("expected NoResourceError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func lifecycleRow(id, customerID int64, bookingType, status string) *sqlmock.Rows {
	now := time.Now()
	var carID any = int64(1)
	if bookingType == "driver-only" {
		carID = nil
	}
	return sqlmock.NewRows([]string{
		"id", "car_id", "driver_id", "customer_id", "manager_id", "booking_type",
		"pickup_location", "dropoff_location", "start_date", "end_date",
		"base_price", "tax_amount", "total_price", "status", "payment_status",
		"payment_method", "transaction_id", "invoice_number", "cancellation_reason",
		"driver_lat", "driver_lng", "driver_located_at", "created_at", "updated_at",
	}).AddRow(id, carID, nil, customerID, nil, bookingType,
		"Kigali", "Huye", now, now.Add(72*time.Hour),
		150000, 15000, 165000, status, "pending",
		"", "", "", "", nil, nil, nil, now, now)
}

func availableDriverRow(id, userID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "rating", "experience", "available", "active",
		"service_options", "latitude", "longitude", "located_at", "created_at", "updated_at",
	}).AddRow(id, userID, 4.5, 5, true, true, "", nil, nil, nil, now, now)
}

func TestUpdateStatusCancelRevertsAvailability(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(lifecycleRow(9, 42, "car-only", "pending"))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("cancelled", "plans changed", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE cars SET available=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM car_reservations WHERE car_id=(.+) AND booking_id=").
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := svc.UpdateStatus(9, "cancelled", "plans changed", domain.RequestContext{UserID: 42, Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusTerminalBookingRefused(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(lifecycleRow(9, 42, "car-only", "completed"))
	mock.ExpectRollback()

	err := svc.UpdateStatus(9, "cancelled", "", domain.RequestContext{UserID: 42, Role: domain.RoleCustomer})
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAssignDriverCommitsAtomically(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(lifecycleRow(9, 42, "car-with-driver", "pending"))
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(availableDriverRow(3, 30))
	mock.ExpectExec("UPDATE drivers SET available=").
		WithArgs(false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET driver_id=").
		WithArgs(int64(3), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO driver_assignments").
		WithArgs(int64(9), int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := svc.AssignDriver(9, 3, domain.RequestContext{UserID: 1, Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("AssignDriver returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAssignDriverAlreadyAssignedConflicts(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	now := time.Now()
	assigned := sqlmock.NewRows([]string{
		"id", "car_id", "driver_id", "customer_id", "manager_id", "booking_type",
		"pickup_location", "dropoff_location", "start_date", "end_date",
		"base_price", "tax_amount", "total_price", "status", "payment_status",
		"payment_method", "transaction_id", "invoice_number", "cancellation_reason",
		"driver_lat", "driver_lng", "driver_located_at", "created_at", "updated_at",
	}).AddRow(9, 1, 4, 42, nil, "car-with-driver",
		"Kigali", "Huye", now, now.Add(72*time.Hour),
		150000, 15000, 165000, "pending", "pending",
		"", "", "", "", nil, nil, nil, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(assigned)
	mock.ExpectRollback()

	err := svc.AssignDriver(9, 3, domain.RequestContext{UserID: 1, Role: domain.RoleAdmin})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateBookingNamedDriverNotifiesOwnerAndDriver(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(carRow(1, 10, 50000, true))
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=(.+) FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(availableDriverRow(3, 30))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(78, 1))
	mock.ExpectExec("UPDATE cars SET available=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO car_reservations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE drivers SET available=").
		WithArgs(false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	id, err := svc.Create(CreateBookingRequest{
		BookingType: "car-with-driver",
		CarID:       ptr(1),
		DriverID:    ptr(3),
		CustomerID:  5,
		StartDate:   day("2026-03-01"),
		EndDate:     day("2026-03-04"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != 78 {
		t.Fatalf("booking id = %d, want 78", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
