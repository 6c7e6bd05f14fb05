package repositories

import (
	"database/sql"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain/models"
)

// ReservationRepository keeps the per-car interval list marking reserved
// date ranges. One row per active booking.
type ReservationRepository struct {
	DB *sql.DB
}

func (r ReservationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ReservationRepository) Insert(q intdb.Queryer, res models.Reservation) (int64, error) {
	result, err := q.Exec(`
		INSERT INTO car_reservations (car_id, booking_id, start_date, end_date)
		VALUES (?, ?, ?, ?)`,
		res.CarID, res.BookingID, res.StartDate, res.EndDate)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// DeleteByBooking removes the interval that the booking placed on the car.
// Exact-match removal keyed by (car_id, booking_id).
func (r ReservationRepository) DeleteByBooking(q intdb.Queryer, carID, bookingID int64) error {
	_, err := q.Exec(`
		DELETE FROM car_reservations WHERE car_id=? AND booking_id=?`,
		carID, bookingID)
	return err
}

func (r ReservationRepository) ListByCar(carID int64) ([]models.Reservation, error) {
	rows, err := r.db().Query(`
		SELECT id, car_id, booking_id, start_date, end_date
		FROM car_reservations WHERE car_id=? ORDER BY start_date`, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.ID, &res.CarID, &res.BookingID, &res.StartDate, &res.EndDate); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
