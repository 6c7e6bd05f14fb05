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

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `id, invoice_id, booking_id, customer_id, amount, method,
	transaction_id, COALESCE(provider,''), status, COALESCE(refund_reason,''), created_at, updated_at`

func scanPayment(scan func(dest ...any) error) (models.Payment, error) {
	var p models.Payment
	err := scan(&p.ID, &p.InvoiceID, &p.BookingID, &p.CustomerID, &p.Amount, &p.Method,
		&p.TransactionID, &p.Provider, &p.Status, &p.RefundReason, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Insert writes an immutable completed payment record inside the caller's
// transaction. The unique transaction_id index is the dedup key against
// replayed gateway callbacks.
func (r PaymentRepository) Insert(q intdb.Queryer, p models.Payment) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO payments
			(invoice_id, booking_id, customer_id, amount, method, transaction_id, provider, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.InvoiceID, p.BookingID, p.CustomerID, p.Amount,
		strings.TrimSpace(p.Method), strings.TrimSpace(p.TransactionID),
		strings.TrimSpace(p.Provider), p.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByTransactionID looks up a payment by its gateway transaction id, used
// to make verification idempotent.
func (r PaymentRepository) GetByTransactionID(q intdb.Queryer, transactionID string) (models.Payment, error) {
	row := q.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE transaction_id=? LIMIT 1`, transactionID)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	return p, nil
}

func (r PaymentRepository) GetByID(id int64) (models.Payment, error) {
	row := r.db().QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id=? LIMIT 1`, id)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	return p, nil
}

// MarkRefunded is the only mutation allowed on a completed payment.
func (r PaymentRepository) MarkRefunded(q intdb.Queryer, id int64, reason string) error {
	res, err := q.Exec(`
		UPDATE payments SET status='refunded', refund_reason=?, updated_at=NOW() WHERE id=?`,
		strings.TrimSpace(reason), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "payment"}
	}
	return nil
}

func (r PaymentRepository) ListByInvoice(invoiceID int64) ([]models.Payment, error) {
	rows, err := r.db().Query(`SELECT `+paymentColumns+` FROM payments WHERE invoice_id=? ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
