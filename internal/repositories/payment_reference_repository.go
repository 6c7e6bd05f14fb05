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

// PaymentReferenceRepository stores the transient tx_ref records created
// before redirecting to the gateway and consumed by the callback.
type PaymentReferenceRepository struct {
	DB *sql.DB
}

func (r PaymentReferenceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PaymentReferenceRepository) Insert(ref models.PaymentReference) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO payment_references (tx_ref, booking_id, customer_id, amount, method)
		VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(ref.TxRef), ref.BookingID, ref.CustomerID, ref.Amount,
		strings.TrimSpace(ref.Method))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByTxRef guards against forged callbacks referencing unknown refs.
func (r PaymentReferenceRepository) GetByTxRef(txRef string) (models.PaymentReference, error) {
	row := r.db().QueryRow(`
		SELECT id, tx_ref, booking_id, customer_id, amount, COALESCE(method,''), verified, created_at
		FROM payment_references WHERE tx_ref=? LIMIT 1`, strings.TrimSpace(txRef))

	var ref models.PaymentReference
	if err := row.Scan(&ref.ID, &ref.TxRef, &ref.BookingID, &ref.CustomerID,
		&ref.Amount, &ref.Method, &ref.Verified, &ref.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentReference{}, domain.NotFoundError{Resource: "Payment reference"}
		}
		return models.PaymentReference{}, err
	}
	return ref, nil
}

func (r PaymentReferenceRepository) MarkVerified(q intdb.Queryer, id int64) error {
	_, err := q.Exec(`UPDATE payment_references SET verified=1 WHERE id=?`, id)
	return err
}
