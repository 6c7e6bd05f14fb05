package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"rental-backend/internal/domain"
	"rental-backend/internal/flutterwave"
	"rental-backend/internal/repositories"
)

type stubGateway struct {
	link      string
	initErr   error
	verify    flutterwave.VerifyResult
	verifyErr error
	refundErr error
}

func (g stubGateway) Initialize(req flutterwave.InitializeRequest) (string, error) {
	return g.link, g.initErr
}

func (g stubGateway) Verify(transactionID string) (flutterwave.VerifyResult, error) {
	return g.verify, g.verifyErr
}

func (g stubGateway) Refund(transactionID string, amount int64) error {
	return g.refundErr
}

func newPaymentService(t *testing.T, gateway flutterwave.Client) (PaymentService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	invoicer := InvoiceService{
		DB:       db,
		Invoices: repositories.InvoiceRepository{DB: db},
		Payments: repositories.PaymentRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Gateway:  gateway,
	}
	svc := PaymentService{
		DB:            db,
		Gateway:       gateway,
		References:    repositories.PaymentReferenceRepository{DB: db},
		Payments:      repositories.PaymentRepository{DB: db},
		Invoices:      repositories.InvoiceRepository{DB: db},
		Bookings:      repositories.BookingRepository{DB: db},
		Users:         repositories.UserRepository{DB: db},
		Notifications: repositories.NotificationRepository{DB: db},
		Invoicer:      invoicer,
		RedirectURL:   "http://localhost:3000/payments/callback",
	}
	return svc, mock, func() { db.Close() }
}

func bookingRow(id, customerID int64, total int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "car_id", "driver_id", "customer_id", "manager_id", "booking_type",
		"pickup_location", "dropoff_location", "start_date", "end_date",
		"base_price", "tax_amount", "total_price", "status", "payment_status",
		"payment_method", "transaction_id", "invoice_number", "cancellation_reason",
		"driver_lat", "driver_lng", "driver_located_at", "created_at", "updated_at",
	}).AddRow(id, 1, nil, customerID, nil, "car-only",
		"Kigali", "Huye", now, now.Add(72*time.Hour),
		total*10/11, total-total*10/11, total, "approved", "pending",
		"", "", "", "", nil, nil, nil, now, now)
}

func referenceRow(id, bookingID, customerID, amount int64, txRef string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tx_ref", "booking_id", "customer_id", "amount", "method", "verified", "created_at",
	}).AddRow(id, txRef, bookingID, customerID, amount, "momo", false, time.Now())
}

func successVerify(txRef string, amount int64) flutterwave.VerifyResult {
	return flutterwave.VerifyResult{
		Status:        "success",
		DataStatus:    "successful",
		TxRef:         txRef,
		TransactionID: "900100",
		Amount:        amount,
		Currency:      "RWF",
	}
}

func TestInitializeRejectsUnknownMethod(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{})
	defer done()

	_, _, err := svc.Initialize(InitializePaymentRequest{BookingID: 7, Method: "cheque"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestInitializeStoresReferenceAndReturnsLink(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{link: "https://checkout.flutterwave.com/pay/abc"})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, 5, 165000))
	mock.ExpectExec("INSERT INTO payment_references").
		WillReturnResult(sqlmock.NewResult(11, 1))

	link, txRef, err := svc.Initialize(InitializePaymentRequest{
		BookingID:     7,
		CustomerID:    5,
		Method:        "momo",
		CustomerEmail: "jean@example.rw",
	})
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if link != "https://checkout.flutterwave.com/pay/abc" {
		t.Fatalf("link = %q", link)
	}
	if !strings.HasPrefix(txRef, "rent-") {
		t.Fatalf("tx_ref = %q, want rent- prefix", txRef)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInitializeGatewayFailure(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{initErr: errors.New("502 bad gateway")})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, 5, 165000))
	mock.ExpectExec("INSERT INTO payment_references").
		WillReturnResult(sqlmock.NewResult(11, 1))

	_, _, err := svc.Initialize(InitializePaymentRequest{BookingID: 7, CustomerID: 5, Method: "card"})
	if !domain.IsPayment(err) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
}

func TestVerifyCallbackGatewayFailure(t *testing.T) {
	svc, _, done := newPaymentService(t, stubGateway{verifyErr: errors.New("timeout")})
	defer done()

	_, err := svc.VerifyCallback("900100", "rent-x")
	if !domain.IsPayment(err) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
}

func TestVerifyCallbackUnsuccessfulStatus(t *testing.T) {
	svc, _, done := newPaymentService(t, stubGateway{
		verify: flutterwave.VerifyResult{Status: "success", DataStatus: "failed"},
	})
	defer done()

	_, err := svc.VerifyCallback("900100", "rent-x")
	if !domain.IsPayment(err) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
}

func TestVerifyCallbackUnknownReference(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{verify: successVerify("rent-x", 165000)})
	defer done()

	mock.ExpectQuery("FROM payment_references WHERE tx_ref=").
		WithArgs("rent-x").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tx_ref", "booking_id", "customer_id", "amount", "method", "verified", "created_at",
		}))

	_, err := svc.VerifyCallback("900100", "rent-x")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if got := err.Error(); got != "Payment reference not found" {
		t.Fatalf("error message = %q", got)
	}
}

func TestVerifyCallbackReplayIsIdempotent(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{verify: successVerify("rent-x", 165000)})
	defer done()

	mock.ExpectQuery("FROM payment_references WHERE tx_ref=").
		WithArgs("rent-x").
		WillReturnRows(referenceRow(11, 7, 5, 165000, "rent-x"))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, 5, 165000))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE transaction_id=").
		WithArgs("900100").
		WillReturnRows(paymentRow(21, 165000, "completed"))
	mock.ExpectExec("UPDATE payment_references SET verified=1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := svc.VerifyCallback("900100", "rent-x")
	if err != nil {
		t.Fatalf("VerifyCallback returned error: %v", err)
	}
	if !outcome.AlreadyProcessed {
		t.Fatal("expected AlreadyProcessed for replayed callback")
	}
	if outcome.BookingID != 7 || outcome.TransactionID != "900100" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyCallbackSettlesLedger(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{verify: successVerify("rent-x", 165000)})
	defer done()

	mock.ExpectQuery("FROM payment_references WHERE tx_ref=").
		WithArgs("rent-x").
		WillReturnRows(referenceRow(11, 7, 5, 165000, "rent-x"))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, 5, 165000))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE transaction_id=").
		WithArgs("900100").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM invoices WHERE booking_id=(.+) FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO counters").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT value FROM counters").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(12))
	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO invoice_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE invoices").
		WithArgs(int64(165000), int64(0), "paid", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payment_references SET verified=1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	outcome, err := svc.VerifyCallback("900100", "rent-x")
	if err != nil {
		t.Fatalf("VerifyCallback returned error: %v", err)
	}
	if outcome.AlreadyProcessed {
		t.Fatal("fresh callback should not be marked as already processed")
	}
	if outcome.BookingID != 7 || outcome.InvoiceID != 3 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInitializeOmittedAmountDefaultsToTotal(t *testing.T) {
	svc, mock, done := newPaymentService(t, stubGateway{link: "https://checkout.flutterwave.com/pay/abc"})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, 5, 165000))
	mock.ExpectExec("INSERT INTO payment_references").
		WithArgs(sqlmock.AnyArg(), int64(7), int64(5), int64(165000), "momo").
		WillReturnResult(sqlmock.NewResult(11, 1))

	_, _, err := svc.Initialize(InitializePaymentRequest{
		BookingID:  7,
		CustomerID: 5,
		Method:     "momo",
	})
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
