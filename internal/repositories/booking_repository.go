package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, car_id, driver_id, customer_id, manager_id, booking_type,
	COALESCE(pickup_location,''), COALESCE(dropoff_location,''),
	start_date, end_date, base_price, tax_amount, total_price,
	status, payment_status, COALESCE(payment_method,''), COALESCE(transaction_id,''),
	COALESCE(invoice_number,''), COALESCE(cancellation_reason,''),
	driver_lat, driver_lng, driver_located_at, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (models.Booking, error) {
	var b models.Booking
	var carID, driverID, managerID sql.NullInt64
	var lat, lng sql.NullFloat64
	var locatedAt sql.NullTime
	err := scan(&b.ID, &carID, &driverID, &b.CustomerID, &managerID, &b.BookingType,
		&b.PickupLocation, &b.DropoffLocation,
		&b.StartDate, &b.EndDate, &b.BasePrice, &b.TaxAmount, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.PaymentMethod, &b.TransactionID,
		&b.InvoiceNumber, &b.CancellationReason,
		&lat, &lng, &locatedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Booking{}, err
	}
	if carID.Valid {
		b.CarID = &carID.Int64
	}
	if driverID.Valid {
		b.DriverID = &driverID.Int64
	}
	if managerID.Valid {
		b.ManagerID = &managerID.Int64
	}
	if lat.Valid {
		b.DriverLat = &lat.Float64
	}
	if lng.Valid {
		b.DriverLng = &lng.Float64
	}
	if locatedAt.Valid {
		t := locatedAt.Time
		b.DriverLocatedAt = &t
	}
	return b, nil
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	row := r.db().QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// GetForUpdate locks the booking row for a status transition or payment
// reconciliation.
func (r BookingRepository) GetForUpdate(q intdb.Queryer, id int64) (models.Booking, error) {
	row := q.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1 FOR UPDATE`, id)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// Insert writes the booking inside the caller's transaction so it commits
// atomically with the availability flip and reservation interval.
func (r BookingRepository) Insert(q intdb.Queryer, b models.Booking) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO bookings
			(car_id, driver_id, customer_id, manager_id, booking_type,
			 pickup_location, dropoff_location, start_date, end_date,
			 base_price, tax_amount, total_price, status, payment_status, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(b.CarID), nullableID(b.DriverID), b.CustomerID, nullableID(b.ManagerID),
		b.BookingType,
		strings.TrimSpace(b.PickupLocation), strings.TrimSpace(b.DropoffLocation),
		b.StartDate, b.EndDate,
		b.BasePrice, b.TaxAmount, b.TotalPrice,
		b.Status, b.PaymentStatus, strings.TrimSpace(b.PaymentMethod),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertExtras stores add-on lines for a booking in the same transaction.
func (r BookingRepository) InsertExtras(q intdb.Queryer, bookingID int64, extras []models.BookingExtra) error {
	for _, e := range extras {
		if _, err := q.Exec(`
			INSERT INTO booking_extras (booking_id, extra_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			bookingID, strings.TrimSpace(e.ExtraID), e.Quantity, e.Price); err != nil {
			return err
		}
	}
	return nil
}

func (r BookingRepository) ListExtras(bookingID int64) ([]models.BookingExtra, error) {
	rows, err := r.db().Query(`
		SELECT id, booking_id, extra_id, quantity, price
		FROM booking_extras WHERE booking_id=? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.BookingExtra{}
	for rows.Next() {
		var e models.BookingExtra
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ExtraID, &e.Quantity, &e.Price); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpdateStatus writes the new status (and optional cancellation reason)
// inside the caller's transaction.
func (r BookingRepository) UpdateStatus(q intdb.Queryer, id int64, status, cancellationReason string) error {
	res, err := q.Exec(`
		UPDATE bookings SET status=?, cancellation_reason=?, updated_at=NOW() WHERE id=?`,
		status, strings.TrimSpace(cancellationReason), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// SetDriver commits an assigned driver onto the booking.
func (r BookingRepository) SetDriver(q intdb.Queryer, id, driverID int64) error {
	_, err := q.Exec(`UPDATE bookings SET driver_id=?, updated_at=NOW() WHERE id=?`, driverID, id)
	return err
}

// SetPaymentResult records the outcome of a verified payment in the same
// transaction that inserts the payment row.
func (r BookingRepository) SetPaymentResult(q intdb.Queryer, id int64, paymentStatus, method, transactionID, invoiceNumber string) error {
	_, err := q.Exec(`
		UPDATE bookings
		SET payment_status=?, payment_method=?, transaction_id=?, invoice_number=?, updated_at=NOW()
		WHERE id=?`,
		paymentStatus, strings.TrimSpace(method), strings.TrimSpace(transactionID),
		strings.TrimSpace(invoiceNumber), id)
	return err
}

// SetPaymentStatus updates only the payment status, used by refunds.
func (r BookingRepository) SetPaymentStatus(q intdb.Queryer, id int64, paymentStatus string) error {
	_, err := q.Exec(`UPDATE bookings SET payment_status=?, updated_at=NOW() WHERE id=?`, paymentStatus, id)
	return err
}

// SetDriverLocation copies a driver's latest position onto the booking for
// client polling. Most-recent-wins, no ordering guarantee.
func (r BookingRepository) SetDriverLocation(id int64, lat, lng float64, at time.Time) error {
	_, err := r.db().Exec(`
		UPDATE bookings SET driver_lat=?, driver_lng=?, driver_located_at=? WHERE id=?`,
		lat, lng, at, id)
	return err
}

// ActiveByDriver returns the driver's current non-terminal booking, oldest
// first, or sql.ErrNoRows wrapped as NotFoundError.
func (r BookingRepository) ActiveByDriver(driverID int64) (models.Booking, error) {
	row := r.db().QueryRow(`
		SELECT `+bookingColumns+` FROM bookings
		WHERE driver_id=? AND status IN ('approved','in-progress')
		ORDER BY id LIMIT 1`, driverID)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	return b, nil
}

func (r BookingRepository) List(customerID int64, status string, limit, offset int) ([]models.Booking, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	where := []string{}
	args := []any{}
	if customerID > 0 {
		where = append(where, "customer_id=?")
		args = append(args, customerID)
	}
	if status != "" {
		where = append(where, "status=?")
		args = append(args, status)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil || *id <= 0 {
		return nil
	}
	return *id
}
