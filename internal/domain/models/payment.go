package models

import "time"

// Payment is immutable once completed, except the move to refunded.
type Payment struct {
	ID            int64     `json:"id"`
	InvoiceID     int64     `json:"invoiceId"`
	BookingID     int64     `json:"bookingId"`
	CustomerID    int64     `json:"customerId"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transactionId"`
	Provider      string    `json:"provider,omitempty"`
	Status        string    `json:"status"`
	RefundReason  string    `json:"refundReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PaymentReference correlates a gateway tx_ref with a booking before the
// customer completes checkout. Consumed by the verification callback.
type PaymentReference struct {
	ID         int64     `json:"id"`
	TxRef      string    `json:"txRef"`
	BookingID  int64     `json:"bookingId"`
	CustomerID int64     `json:"customerId"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"createdAt"`
}
