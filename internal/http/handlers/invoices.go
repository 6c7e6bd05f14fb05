package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/http/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
)

type InvoiceHandler struct {
	Invoices repositories.InvoiceRepository
	Payments repositories.PaymentRepository
	Svc      services.InvoiceService
	Docs     services.DocsService
}

// GET /api/invoices
func (h InvoiceHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	customerID := actor.UserID
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleManager {
		if q := QueryInt(c, "customer_id", 0); q > 0 {
			customerID = int64(q)
		}
	}

	invoices, err := h.Invoices.ListByCustomer(customerID, QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (h InvoiceHandler) loadForActor(c *gin.Context) (models.Invoice, bool) {
	id, ok := IDParam(c, "id")
	if !ok {
		return models.Invoice{}, false
	}

	inv, err := h.Invoices.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return models.Invoice{}, false
	}

	actor := middleware.GetActor(c)
	if actor.Role == domain.RoleCustomer && inv.CustomerID != actor.UserID {
		RespondError(c, http.StatusForbidden, "cannot view another customer's invoice", nil)
		return models.Invoice{}, false
	}
	return inv, true
}

// GET /api/invoices/:id
func (h InvoiceHandler) Get(c *gin.Context) {
	inv, ok := h.loadForActor(c)
	if !ok {
		return
	}

	items, err := h.Invoices.ListItems(inv.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	inv.Items = items

	c.JSON(http.StatusOK, gin.H{"data": inv})
}

// GET /api/invoices/:id/payments
func (h InvoiceHandler) ListPayments(c *gin.Context) {
	inv, ok := h.loadForActor(c)
	if !ok {
		return
	}

	payments, err := h.Payments.ListByInvoice(inv.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

// GET /api/invoices/:id/pdf
func (h InvoiceHandler) PDF(c *gin.Context) {
	inv, ok := h.loadForActor(c)
	if !ok {
		return
	}

	docs := h.Docs
	docs.RequestID = middleware.GetRequestID(c)
	pdf, filename, err := docs.GenerateInvoicePDF(inv.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type manualInvoiceRequest struct {
	BookingID  int64                `json:"bookingId"`
	CustomerID int64                `json:"customerId"`
	TaxPercent *int64               `json:"taxPercent"`
	Items      []models.InvoiceItem `json:"items"`
}

// POST /api/invoices
// Manual invoicing for corrections and offline deals. Staff only.
func (h InvoiceHandler) Create(c *gin.Context) {
	var req manualInvoiceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.BookingID < 1 || req.CustomerID < 1 {
		RespondError(c, http.StatusBadRequest, "bookingId and customerId are required", nil)
		return
	}
	if len(req.Items) == 0 {
		RespondError(c, http.StatusBadRequest, "at least one line item is required", nil)
		return
	}

	taxPercent := int64(-1)
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	inv, err := svc.CreateManual(req.BookingID, req.CustomerID, req.Items, taxPercent)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "invoice created", "data": inv})
}
