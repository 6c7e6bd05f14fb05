package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
)

type InvoiceRepository struct {
	DB *sql.DB
}

func (r InvoiceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const invoiceColumns = `id, invoice_number, booking_id, customer_id, subtotal, tax, total,
	paid_amount, remaining_amount, status, created_at, updated_at`

func scanInvoice(scan func(dest ...any) error) (models.Invoice, error) {
	var inv models.Invoice
	err := scan(&inv.ID, &inv.InvoiceNumber, &inv.BookingID, &inv.CustomerID,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.PaidAmount, &inv.RemainingAmount,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// NextInvoiceNumber increments the invoice counter inside the caller's
// transaction and stamps the result with year+month.
func (r InvoiceRepository) NextInvoiceNumber(q intdb.Queryer, now time.Time) (string, error) {
	if _, err := q.Exec(`
		INSERT INTO counters (name, value) VALUES ('invoice', 1)
		ON DUPLICATE KEY UPDATE value = value + 1`); err != nil {
		return "", err
	}
	var seq int64
	if err := q.QueryRow(`SELECT value FROM counters WHERE name='invoice'`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%05d", now.Format("200601"), seq), nil
}

func (r InvoiceRepository) Insert(q intdb.Queryer, inv models.Invoice) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO invoices
			(invoice_number, booking_id, customer_id, subtotal, tax, total,
			 paid_amount, remaining_amount, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceNumber, inv.BookingID, inv.CustomerID,
		inv.Subtotal, inv.Tax, inv.Total,
		inv.PaidAmount, inv.RemainingAmount, inv.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, item := range inv.Items {
		if _, err := q.Exec(`
			INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, amount)
			VALUES (?, ?, ?, ?, ?)`,
			id, strings.TrimSpace(item.Description), item.Quantity, item.UnitPrice, item.Amount); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r InvoiceRepository) GetByID(id int64) (models.Invoice, error) {
	row := r.db().QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE id=? LIMIT 1`, id)
	inv, err := scanInvoice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invoice{}, domain.NotFoundError{Resource: "invoice"}
		}
		return models.Invoice{}, err
	}
	return inv, nil
}

// GetByBookingForUpdate returns the booking's invoice locked for a ledger
// update, or NotFoundError when none exists yet.
func (r InvoiceRepository) GetByBookingForUpdate(q intdb.Queryer, bookingID int64) (models.Invoice, error) {
	row := q.QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE booking_id=? LIMIT 1 FOR UPDATE`, bookingID)
	inv, err := scanInvoice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invoice{}, domain.NotFoundError{Resource: "invoice"}
		}
		return models.Invoice{}, err
	}
	return inv, nil
}

// ApplyPayment moves the ledger. paid_amount + remaining_amount == total is
// preserved by deriving remaining from total here.
func (r InvoiceRepository) ApplyPayment(q intdb.Queryer, id, paidAmount, remainingAmount int64, status string) error {
	res, err := q.Exec(`
		UPDATE invoices
		SET paid_amount=?, remaining_amount=?, status=?, updated_at=NOW()
		WHERE id=?`,
		paidAmount, remainingAmount, status, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "invoice"}
	}
	return nil
}

func (r InvoiceRepository) ListItems(invoiceID int64) ([]models.InvoiceItem, error) {
	rows, err := r.db().Query(`
		SELECT id, invoice_id, description, quantity, unit_price, amount
		FROM invoice_items WHERE invoice_id=? ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.InvoiceItem{}
	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitPrice, &item.Amount); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r InvoiceRepository) ListByCustomer(customerID int64, limit, offset int) ([]models.Invoice, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db().Query(`
		SELECT `+invoiceColumns+` FROM invoices
		WHERE customer_id=? ORDER BY id DESC LIMIT ? OFFSET ?`,
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
