package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
)

type CarRepository struct {
	DB *sql.DB
}

func (r CarRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const carColumns = `id, owner_id, brand, model, year, COALESCE(plate_number,''), price_per_day, available, COALESCE(unavailability_reason,''), created_at, updated_at`

func scanCar(scan func(dest ...any) error) (models.Car, error) {
	var c models.Car
	err := scan(&c.ID, &c.OwnerID, &c.Brand, &c.Model, &c.Year, &c.PlateNumber,
		&c.PricePerDay, &c.Available, &c.UnavailabilityReason, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r CarRepository) GetByID(id int64) (models.Car, error) {
	row := r.db().QueryRow(`SELECT `+carColumns+` FROM cars WHERE id=? LIMIT 1`, id)
	c, err := scanCar(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Car{}, domain.NotFoundError{Resource: "car"}
		}
		return models.Car{}, err
	}
	return c, nil
}

// GetForUpdate locks the car row for the duration of the transaction so the
// availability check and flip cannot race with a concurrent booking.
func (r CarRepository) GetForUpdate(q intdb.Queryer, id int64) (models.Car, error) {
	row := q.QueryRow(`SELECT `+carColumns+` FROM cars WHERE id=? LIMIT 1 FOR UPDATE`, id)
	c, err := scanCar(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Car{}, domain.NotFoundError{Resource: "car"}
		}
		return models.Car{}, err
	}
	return c, nil
}

// SetAvailability flips the available flag and reason inside the caller's
// transaction.
func (r CarRepository) SetAvailability(q intdb.Queryer, id int64, available bool, reason string) error {
	res, err := q.Exec(`
		UPDATE cars SET available=?, unavailability_reason=?, updated_at=NOW() WHERE id=?`,
		available, strings.TrimSpace(reason), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "car"}
	}
	return nil
}

func (r CarRepository) List(onlyAvailable bool, limit, offset int) ([]models.Car, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + carColumns + ` FROM cars`
	args := []any{}
	if onlyAvailable {
		query += ` WHERE available=1`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Car{}
	for rows.Next() {
		c, err := scanCar(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r CarRepository) Create(c models.Car) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO cars (owner_id, brand, model, year, plate_number, price_per_day, available)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.OwnerID,
		strings.TrimSpace(c.Brand),
		strings.TrimSpace(c.Model),
		c.Year,
		strings.TrimSpace(c.PlateNumber),
		c.PricePerDay,
		c.Available,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r CarRepository) Update(c models.Car) error {
	res, err := r.db().Exec(`
		UPDATE cars
		SET brand=?, model=?, year=?, plate_number=?, price_per_day=?, updated_at=NOW()
		WHERE id=?`,
		strings.TrimSpace(c.Brand),
		strings.TrimSpace(c.Model),
		c.Year,
		strings.TrimSpace(c.PlateNumber),
		c.PricePerDay,
		c.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "car"}
	}
	return nil
}

func (r CarRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM cars WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "car"}
	}
	return nil
}
