package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
)

func newInvoiceService(t *testing.T) (InvoiceService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := InvoiceService{
		DB:       db,
		Invoices: repositories.InvoiceRepository{DB: db},
		Payments: repositories.PaymentRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
	}
	return svc, mock, func() { db.Close() }
}

func paymentRow(id int64, amount int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "invoice_id", "booking_id", "customer_id", "amount", "method",
		"transaction_id", "provider", "status", "refund_reason", "created_at", "updated_at",
	}).AddRow(id, 3, 7, 5, amount, "card", "tx-100", "flutterwave", status, "", now, now)
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		total, paid, remaining int64
		want                   string
	}{
		{165000, 0, 165000, "issued"},
		{165000, 65000, 100000, "partial"},
		{165000, 165000, 0, "paid"},
		{165000, 200000, 0, "paid"},
	}
	for _, c := range cases {
		if got := DeriveStatus(c.total, c.paid, c.remaining); got != c.want {
			t.Errorf("DeriveStatus(%d,%d,%d) = %q, want %q", c.total, c.paid, c.remaining, got, c.want)
		}
	}
}

func TestCreateManualInvoiceTotals(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO counters").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT value FROM counters").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(12))
	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO invoice_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	inv, err := svc.CreateManual(7, 5, []models.InvoiceItem{
		{Description: "Car rental (3 days)", Quantity: 3, UnitPrice: 50000},
	}, -1)
	if err != nil {
		t.Fatalf("CreateManual returned error: %v", err)
	}
	if inv.Subtotal != 150000 {
		t.Fatalf("subtotal = %d, want 150000", inv.Subtotal)
	}
	if inv.Tax != 15000 {
		t.Fatalf("tax = %d, want 15000", inv.Tax)
	}
	if inv.Total != 165000 || inv.RemainingAmount != 165000 || inv.PaidAmount != 0 {
		t.Fatalf("ledger wrong: total=%d paid=%d remaining=%d", inv.Total, inv.PaidAmount, inv.RemainingAmount)
	}
	if inv.Status != "issued" {
		t.Fatalf("status = %q, want issued", inv.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordPaymentMovesLedger(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE invoices").
		WithArgs(int64(65000), int64(100000), "partial", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inv := models.Invoice{ID: 3, Total: 165000, PaidAmount: 0, RemainingAmount: 165000}
	p, err := svc.RecordPayment(svc.DB, inv, models.Payment{
		BookingID:     7,
		CustomerID:    5,
		Amount:        65000,
		Method:        "momo",
		TransactionID: "tx-100",
	})
	if err != nil {
		t.Fatalf("RecordPayment returned error: %v", err)
	}
	if p.ID != 21 || p.Status != "completed" {
		t.Fatalf("payment = %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordPaymentDuplicateTransactionConflicts(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'tx-100'"})

	inv := models.Invoice{ID: 3, Total: 165000, RemainingAmount: 165000}
	_, err := svc.RecordPayment(svc.DB, inv, models.Payment{
		Amount:        165000,
		TransactionID: "tx-100",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestProcessRefundAlreadyRefunded(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id=").
		WithArgs(int64(21)).
		WillReturnRows(paymentRow(21, 65000, "refunded"))

	err := svc.ProcessRefund(21, 0, "double charge", domain.RequestContext{UserID: 1, Role: domain.RoleAdmin})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestProcessRefundRequiresStaff(t *testing.T) {
	svc, _, done := newInvoiceService(t)
	defer done()

	err := svc.ProcessRefund(21, 0, "", domain.RequestContext{UserID: 5, Role: domain.RoleCustomer})
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestProcessRefundHappyPath(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()
	svc.Gateway = stubGateway{}

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id=").
		WithArgs(int64(21)).
		WillReturnRows(paymentRow(21, 65000, "completed"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status='refunded'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET payment_status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.ProcessRefund(21, 65000, "trip cancelled", domain.RequestContext{UserID: 1, Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("ProcessRefund returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
