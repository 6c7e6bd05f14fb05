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

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const driverColumns = `id, user_id, rating, experience, available, active, COALESCE(service_options,''), latitude, longitude, located_at, created_at, updated_at`

func scanDriver(scan func(dest ...any) error) (models.Driver, error) {
	var d models.Driver
	var lat, lng sql.NullFloat64
	var at sql.NullTime
	err := scan(&d.ID, &d.UserID, &d.Rating, &d.Experience, &d.Available, &d.Active,
		&d.ServiceOptions, &lat, &lng, &at, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Driver{}, err
	}
	if lat.Valid {
		d.Latitude = &lat.Float64
	}
	if lng.Valid {
		d.Longitude = &lng.Float64
	}
	if at.Valid {
		t := at.Time
		d.LocatedAt = &t
	}
	return d, nil
}

func (r DriverRepository) GetByID(id int64) (models.Driver, error) {
	row := r.db().QueryRow(`SELECT `+driverColumns+` FROM drivers WHERE id=? LIMIT 1`, id)
	d, err := scanDriver(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundError{Resource: "driver"}
		}
		return models.Driver{}, err
	}
	return d, nil
}

func (r DriverRepository) GetByUserID(userID int64) (models.Driver, error) {
	row := r.db().QueryRow(`SELECT `+driverColumns+` FROM drivers WHERE user_id=? LIMIT 1`, userID)
	d, err := scanDriver(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundError{Resource: "driver"}
		}
		return models.Driver{}, err
	}
	return d, nil
}

// GetForUpdate locks the driver row inside the caller's transaction.
func (r DriverRepository) GetForUpdate(q intdb.Queryer, id int64) (models.Driver, error) {
	row := q.QueryRow(`SELECT `+driverColumns+` FROM drivers WHERE id=? LIMIT 1 FOR UPDATE`, id)
	d, err := scanDriver(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundError{Resource: "driver"}
		}
		return models.Driver{}, err
	}
	return d, nil
}

// CountAvailable counts drivers able to serve a new booking. Creation only
// checks pool existence; a specific driver is committed later by
// AssignDriver.
func (r DriverRepository) CountAvailable(q intdb.Queryer) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM drivers WHERE available=1 AND active=1`).Scan(&n)
	return n, err
}

func (r DriverRepository) SetAvailability(q intdb.Queryer, id int64, available bool) error {
	res, err := q.Exec(`UPDATE drivers SET available=?, updated_at=NOW() WHERE id=?`, available, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "driver"}
	}
	return nil
}

// UpdateLocation is last-write-wins; the caller supplies the observation
// time, the row records the server timestamp.
func (r DriverRepository) UpdateLocation(id int64, lat, lng float64, at time.Time) error {
	res, err := r.db().Exec(`
		UPDATE drivers SET latitude=?, longitude=?, located_at=?, updated_at=NOW() WHERE id=?`,
		lat, lng, at, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "driver"}
	}
	return nil
}

func (r DriverRepository) List(onlyAvailable bool, limit, offset int) ([]models.Driver, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + driverColumns + ` FROM drivers`
	args := []any{}
	if onlyAvailable {
		query += ` WHERE available=1 AND active=1`
	}
	query += ` ORDER BY rating DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r DriverRepository) Create(d models.Driver) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO drivers (user_id, rating, experience, available, active, service_options)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Rating, d.Experience, d.Available, d.Active,
		strings.TrimSpace(d.ServiceOptions))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r DriverRepository) Update(d models.Driver) error {
	res, err := r.db().Exec(`
		UPDATE drivers
		SET rating=?, experience=?, active=?, service_options=?, updated_at=NOW()
		WHERE id=?`,
		d.Rating, d.Experience, d.Active, strings.TrimSpace(d.ServiceOptions), d.ID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "driver"}
	}
	return nil
}

// InsertAssignment records the driver committed to a booking.
func (r DriverRepository) InsertAssignment(q intdb.Queryer, a models.DriverAssignment) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO driver_assignments (booking_id, driver_id, assigned_by)
		VALUES (?, ?, ?)`,
		a.BookingID, a.DriverID, a.AssignedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
