package domain

// BookingType decides which resources a booking must reference.
type BookingType string

const (
	BookingCarOnly       BookingType = "car-only"
	BookingCarWithDriver BookingType = "car-with-driver"
	BookingDriverOnly    BookingType = "driver-only"
)

// BookingStatus values. Rejected, cancelled and completed are terminal.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusApproved   BookingStatus = "approved"
	StatusRejected   BookingStatus = "rejected"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus of a booking.
type PaymentStatus string

const (
	PayPending  PaymentStatus = "pending"
	PayPaid     PaymentStatus = "paid"
	PayPartial  PaymentStatus = "partial"
	PayRefunded PaymentStatus = "refunded"
)

// InvoiceStatus is derived from the remaining amount, never set directly.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePartial   InvoiceStatus = "partial"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Roles carried in JWT claims.
const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Notification channels.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}
