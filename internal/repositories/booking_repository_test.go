package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
)

func TestBookingGetByIDScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "car_id", "driver_id", "customer_id", "manager_id", "booking_type",
			"pickup_location", "dropoff_location", "start_date", "end_date",
			"base_price", "tax_amount", "total_price", "status", "payment_status",
			"payment_method", "transaction_id", "invoice_number", "cancellation_reason",
			"driver_lat", "driver_lng", "driver_located_at", "created_at", "updated_at",
		}).AddRow(7, nil, nil, 5, nil, "driver-only",
			"Kigali", "Huye", now, now.Add(48*time.Hour),
			150000, 15000, 165000, "pending", "pending",
			"", "", "", "", nil, nil, nil, now, now))

	repo := BookingRepository{DB: db}
	b, err := repo.GetByID(7)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if b.CarID != nil || b.DriverID != nil || b.ManagerID != nil {
		t.Fatalf("nullable ids should stay nil: %+v", b)
	}
	if b.DriverLat != nil || b.DriverLocatedAt != nil {
		t.Fatal("location fields should stay nil before first report")
	}
	if b.TotalPrice != 165000 || b.Status != "pending" {
		t.Fatalf("booking = %+v", b)
	}
}

func TestBookingGetByIDMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := BookingRepository{DB: db}
	if _, err := repo.GetByID(404); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestBookingInsertBindsNullableIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	carID := int64(1)
	now := time.Now()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(carID, nil, int64(5), nil, "car-only",
			"Kigali", "Huye", now, now.Add(48*time.Hour),
			int64(100000), int64(10000), int64(110000), "pending", "pending", "momo").
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := BookingRepository{DB: db}
	id, err := repo.Insert(db, models.Booking{
		CarID:           &carID,
		CustomerID:      5,
		BookingType:     "car-only",
		PickupLocation:  "Kigali",
		DropoffLocation: "Huye",
		StartDate:       now,
		EndDate:         now.Add(48 * time.Hour),
		BasePrice:       100000,
		TaxAmount:       10000,
		TotalPrice:      110000,
		Status:          "pending",
		PaymentStatus:   "pending",
		PaymentMethod:   "momo",
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
