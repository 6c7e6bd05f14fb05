package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/http/middleware"
	"rental-backend/internal/services"
	"rental-backend/internal/utils"
)

type PaymentHandler struct {
	Svc      services.PaymentService
	Invoices services.InvoiceService
}

type initializePaymentRequest struct {
	BookingID     int64  `json:"bookingId"`
	Amount        int64  `json:"amount"`
	Method        string `json:"paymentMethod"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	CustomerName  string `json:"customerName"`
}

// POST /api/payments/initialize
func (h PaymentHandler) Initialize(c *gin.Context) {
	var req initializePaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.BookingID < 1 {
		RespondError(c, http.StatusBadRequest, "bookingId is required", nil)
		return
	}
	if req.Amount < 0 {
		RespondError(c, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	link, txRef, err := svc.Initialize(services.InitializePaymentRequest{
		BookingID:     req.BookingID,
		CustomerID:    middleware.GetActor(c).UserID,
		Amount:        req.Amount,
		Method:        utils.TrimOrEmpty(req.Method),
		CustomerEmail: utils.TrimOrEmpty(req.CustomerEmail),
		CustomerPhone: utils.NormalizePhone(req.CustomerPhone),
		CustomerName:  utils.NormalizeSpace(req.CustomerName),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   gin.H{"link": link},
		"tx_ref": txRef,
	})
}

// GET /api/payments/callback
// The gateway redirects the customer here with transaction_id and tx_ref.
func (h PaymentHandler) VerifyCallback(c *gin.Context) {
	transactionID := utils.TrimOrEmpty(c.Query("transaction_id"))
	txRef := utils.TrimOrEmpty(c.Query("tx_ref"))
	if transactionID == "" || txRef == "" {
		RespondError(c, http.StatusBadRequest, "transaction_id and tx_ref are required", nil)
		return
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	outcome, err := svc.VerifyCallback(transactionID, txRef)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	message := "payment verified"
	if outcome.AlreadyProcessed {
		message = "payment already recorded"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       message,
		"bookingId":     outcome.BookingID,
		"transactionId": outcome.TransactionID,
	})
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// POST /api/payments/:id/refund
func (h PaymentHandler) Refund(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	var req refundRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := h.Invoices
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.ProcessRefund(id, req.Amount, utils.NormalizeSpace(req.Reason), middleware.GetActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment refunded"})
}
