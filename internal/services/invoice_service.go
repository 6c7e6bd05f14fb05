package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/flutterwave"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// InvoiceService is the payment ledger: invoice totals, paid/remaining
// tracking and payment records against invoices.
type InvoiceService struct {
	DB        *sql.DB
	Invoices  repositories.InvoiceRepository
	Payments  repositories.PaymentRepository
	Bookings  repositories.BookingRepository
	Gateway   flutterwave.Client
	RequestID string
}

func (s InvoiceService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// DeriveStatus maps the ledger to an invoice status: settled invoices are
// paid, anything partially covered is partial, the rest stays issued.
func DeriveStatus(total, paidAmount, remainingAmount int64) string {
	switch {
	case remainingAmount == 0 && total > 0:
		return string(domain.InvoicePaid)
	case paidAmount > 0 && paidAmount < total:
		return string(domain.InvoicePartial)
	default:
		return string(domain.InvoiceIssued)
	}
}

// CreateInvoice computes totals from the line items and persists the
// invoice inside the caller's transaction.
func (s InvoiceService) CreateInvoice(q intdb.Queryer, bookingID, customerID int64, items []models.InvoiceItem, taxPercent int64) (models.Invoice, error) {
	if bookingID <= 0 {
		return models.Invoice{}, domain.ValidationError{Field: "bookingId", Msg: "invalid id"}
	}
	if len(items) == 0 {
		return models.Invoice{}, domain.ValidationError{Field: "items", Msg: "at least one line item required"}
	}
	if taxPercent < 0 {
		taxPercent = TaxPercent
	}

	var subtotal int64
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
		items[i].Amount = int64(items[i].Quantity) * items[i].UnitPrice
		subtotal += items[i].Amount
	}
	tax := utils.PercentOf(subtotal, taxPercent)
	total := subtotal + tax

	number, err := s.Invoices.NextInvoiceNumber(q, utils.NowUTC())
	if err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}

	inv := models.Invoice{
		InvoiceNumber:   number,
		BookingID:       bookingID,
		CustomerID:      customerID,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		PaidAmount:      0,
		RemainingAmount: total,
		Status:          string(domain.InvoiceIssued),
		Items:           items,
	}
	id, err := s.Invoices.Insert(q, inv)
	if err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}
	inv.ID = id

	utils.LogEvent(s.RequestID, "invoice", "create",
		fmt.Sprintf("invoice=%s booking_id=%d total=%d", number, bookingID, total))
	return inv, nil
}

// RecordPayment inserts an immutable completed payment and moves the
// invoice ledger, keeping paid + remaining == total. Runs inside the
// caller's transaction; a duplicate transaction id is a conflict.
func (s InvoiceService) RecordPayment(q intdb.Queryer, inv models.Invoice, p models.Payment) (models.Payment, error) {
	if p.Amount <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if strings.TrimSpace(p.TransactionID) == "" {
		return models.Payment{}, domain.ValidationError{Field: "transactionId", Msg: "required"}
	}

	p.InvoiceID = inv.ID
	p.Status = "completed"
	id, err := s.Payments.Insert(q, p)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return models.Payment{}, domain.ConflictError{Resource: "payment", Msg: "transaction already recorded"}
		}
		return models.Payment{}, domain.InternalError{Err: err}
	}
	p.ID = id

	paid := inv.PaidAmount + p.Amount
	remaining := inv.Total - paid
	if remaining < 0 {
		remaining = 0
	}
	status := DeriveStatus(inv.Total, paid, remaining)
	if err := s.Invoices.ApplyPayment(q, inv.ID, paid, remaining, status); err != nil {
		return models.Payment{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "invoice", "record_payment",
		fmt.Sprintf("invoice_id=%d amount=%d tx=%s status=%s", inv.ID, p.Amount, p.TransactionID, status))
	return p, nil
}

// ProcessRefund refunds a completed payment through the gateway and marks
// both the payment and the booking refunded. A payment already refunded
// cannot be refunded twice.
func (s InvoiceService) ProcessRefund(paymentID, refundAmount int64, reason string, actor domain.RequestContext) error {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return domain.AuthorizationError{Action: "process refunds"}
	}

	payment, err := s.Payments.GetByID(paymentID)
	if err != nil {
		return err
	}
	if payment.Status == "refunded" {
		return domain.ConflictError{Resource: "payment", Msg: "already refunded"}
	}
	if refundAmount <= 0 || refundAmount > payment.Amount {
		refundAmount = payment.Amount
	}

	if s.Gateway != nil {
		if err := s.Gateway.Refund(payment.TransactionID, refundAmount); err != nil {
			return domain.PaymentError{Msg: "gateway refund failed", Err: err}
		}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	if err := s.Payments.MarkRefunded(tx, paymentID, reason); err != nil {
		return err
	}
	if err := s.Bookings.SetPaymentStatus(tx, payment.BookingID, string(domain.PayRefunded)); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "invoice", "refund",
		fmt.Sprintf("payment_id=%d amount=%d", paymentID, refundAmount))
	return nil
}

// CreateManual opens its own transaction for invoice creation outside the
// payment callback path.
func (s InvoiceService) CreateManual(bookingID, customerID int64, items []models.InvoiceItem, taxPercent int64) (models.Invoice, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	inv, err := s.CreateInvoice(tx, bookingID, customerID, items, taxPercent)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}
	return inv, nil
}
