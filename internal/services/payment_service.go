package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	intconfig "rental-backend/internal/config"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/flutterwave"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// PaymentService drives checkout: reference creation, gateway redirects
// and the verification callback that settles the ledger.
type PaymentService struct {
	DB            *sql.DB
	Gateway       flutterwave.Client
	References    repositories.PaymentReferenceRepository
	Payments      repositories.PaymentRepository
	Invoices      repositories.InvoiceRepository
	Bookings      repositories.BookingRepository
	Users         repositories.UserRepository
	Notifications repositories.NotificationRepository
	Invoicer      InvoiceService
	RedirectURL   string
	RequestID     string
}

func (s PaymentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type InitializePaymentRequest struct {
	BookingID     int64
	CustomerID    int64
	Amount        int64
	Method        string // card, momo
	CustomerEmail string
	CustomerPhone string
	CustomerName  string
}

// Initialize stores a payment reference keyed by a fresh tx_ref and asks
// the gateway for a hosted checkout link.
func (s PaymentService) Initialize(req InitializePaymentRequest) (link, txRef string, err error) {
	if req.BookingID <= 0 {
		return "", "", domain.ValidationError{Field: "bookingId", Msg: "invalid id"}
	}
	if req.Method != "card" && req.Method != "momo" {
		return "", "", domain.ValidationError{Field: "paymentMethod", Msg: "must be card or momo"}
	}

	booking, err := s.Bookings.GetByID(req.BookingID)
	if err != nil {
		return "", "", err
	}
	amount := req.Amount
	if amount <= 0 {
		amount = booking.TotalPrice
	}

	txRef = "rent-" + uuid.NewString()
	if _, err := s.References.Insert(models.PaymentReference{
		TxRef:      txRef,
		BookingID:  booking.ID,
		CustomerID: req.CustomerID,
		Amount:     amount,
		Method:     req.Method,
	}); err != nil {
		return "", "", domain.InternalError{Err: err}
	}

	link, err = s.Gateway.Initialize(flutterwave.InitializeRequest{
		TxRef:         txRef,
		Amount:        amount,
		Currency:      "RWF",
		RedirectURL:   s.RedirectURL,
		PaymentMethod: req.Method,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		Description:   fmt.Sprintf("Booking #%d", booking.ID),
	})
	if err != nil {
		return "", "", domain.PaymentError{Msg: "failed to initialize payment", Err: err}
	}

	utils.LogEvent(s.RequestID, "payment", "initialize",
		fmt.Sprintf("booking_id=%d tx_ref=%s amount=%d", booking.ID, txRef, amount))
	return link, txRef, nil
}

// VerifyOutcome reports what the callback settled.
type VerifyOutcome struct {
	BookingID        int64
	TransactionID    string
	InvoiceID        int64
	AlreadyProcessed bool
}

// VerifyCallback handles the gateway redirect. Verification happens against
// the gateway first; the ledger moves in a single transaction keyed by the
// gateway transaction id so replayed callbacks settle nothing twice.
func (s PaymentService) VerifyCallback(transactionID, txRef string) (VerifyOutcome, error) {
	transactionID = strings.TrimSpace(transactionID)
	txRef = strings.TrimSpace(txRef)
	if transactionID == "" || txRef == "" {
		return VerifyOutcome{}, domain.ValidationError{Field: "transaction_id", Msg: "transaction_id and tx_ref required"}
	}

	v, err := s.Gateway.Verify(transactionID)
	if err != nil {
		return VerifyOutcome{}, domain.PaymentError{Msg: "gateway verification failed", Err: err}
	}
	if v.Status != "success" || v.DataStatus != "successful" {
		return VerifyOutcome{}, domain.PaymentError{Msg: "payment not successful"}
	}

	ref, err := s.References.GetByTxRef(txRef)
	if err != nil {
		return VerifyOutcome{}, err
	}
	booking, err := s.Bookings.GetByID(ref.BookingID)
	if err != nil {
		return VerifyOutcome{}, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	// Replay guard: a payment for this gateway transaction already exists.
	if existing, err := s.Payments.GetByTransactionID(tx, transactionID); err == nil {
		if err := s.References.MarkVerified(tx, ref.ID); err != nil {
			return VerifyOutcome{}, domain.InternalError{Err: err}
		}
		if err := tx.Commit(); err != nil {
			return VerifyOutcome{}, domain.InternalError{Err: err}
		}
		utils.LogEvent(s.RequestID, "payment", "verify",
			fmt.Sprintf("tx=%s already recorded, skipping", transactionID))
		return VerifyOutcome{
			BookingID:        booking.ID,
			TransactionID:    transactionID,
			InvoiceID:        existing.InvoiceID,
			AlreadyProcessed: true,
		}, nil
	} else if !domain.IsNotFound(err) {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}

	inv, err := s.Invoices.GetByBookingForUpdate(tx, booking.ID)
	if domain.IsNotFound(err) {
		inv, err = s.Invoicer.CreateInvoice(tx, booking.ID, ref.CustomerID, []models.InvoiceItem{{
			Description: fmt.Sprintf("Car rental booking #%d", booking.ID),
			Quantity:    1,
			UnitPrice:   ref.Amount,
		}}, 0)
	}
	if err != nil {
		return VerifyOutcome{}, err
	}

	payment, err := s.Invoicer.RecordPayment(tx, inv, models.Payment{
		BookingID:     booking.ID,
		CustomerID:    ref.CustomerID,
		Amount:        ref.Amount,
		Method:        ref.Method,
		TransactionID: transactionID,
		Provider:      "flutterwave",
	})
	if err != nil {
		return VerifyOutcome{}, err
	}

	if err := s.Bookings.SetPaymentResult(tx, booking.ID, string(domain.PayPaid), ref.Method, transactionID, inv.InvoiceNumber); err != nil {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}
	if err := s.References.MarkVerified(tx, ref.ID); err != nil {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}
	if _, err := s.Notifications.Insert(tx, models.Notification{
		UserID:  ref.CustomerID,
		Title:   "Payment confirmed",
		Message: fmt.Sprintf("We received %s for booking #%d", utils.FormatRWF(ref.Amount), booking.ID),
		Type:    "payment_confirmed",
	}); err != nil {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return VerifyOutcome{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "payment", "verify",
		fmt.Sprintf("booking_id=%d tx=%s amount=%d payment_id=%d", booking.ID, transactionID, ref.Amount, payment.ID))
	return VerifyOutcome{
		BookingID:     booking.ID,
		TransactionID: transactionID,
		InvoiceID:     inv.ID,
	}, nil
}
