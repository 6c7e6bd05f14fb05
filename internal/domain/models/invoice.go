package models

import "time"

// Invoice ledger invariant: PaidAmount + RemainingAmount == Total.
type Invoice struct {
	ID              int64     `json:"id"`
	InvoiceNumber   string    `json:"invoiceNumber"`
	BookingID       int64     `json:"bookingId"`
	CustomerID      int64     `json:"customerId"`
	Subtotal        int64     `json:"subtotal"`
	Tax             int64     `json:"tax"`
	Total           int64     `json:"total"`
	PaidAmount      int64     `json:"paidAmount"`
	RemainingAmount int64     `json:"remainingAmount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Items []InvoiceItem `json:"items,omitempty"`
}

type InvoiceItem struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoiceId"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Amount      int64  `json:"amount"`
}
