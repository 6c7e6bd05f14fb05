package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// DocsService renders invoice PDFs for download.
type DocsService struct {
	Invoices  repositories.InvoiceRepository
	Bookings  repositories.BookingRepository
	Users     repositories.UserRepository
	RequestID string
}

func (s DocsService) GenerateInvoicePDF(invoiceID int64) ([]byte, string, error) {
	inv, err := s.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, "", err
	}
	items, err := s.Invoices.ListItems(invoiceID)
	if err != nil {
		return nil, "", err
	}
	inv.Items = items

	var customer models.User
	if u, err := s.Users.GetByID(inv.CustomerID); err == nil {
		customer = u
	}

	utils.LogEvent(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("invoice_id=%d", invoiceID))
	return buildInvoicePDF(inv, customer)
}

func buildInvoicePDF(inv models.Invoice, customer models.User) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+inv.InvoiceNumber)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Booking    : #%d", inv.BookingID))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name  : "+safe(customer.Name, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Email : "+safe(customer.Email, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Items:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, item := range inv.Items {
		line := fmt.Sprintf("%d) %s  x%d  @ %s  =  %s",
			i+1, safe(item.Description, "-"), item.Quantity,
			utils.FormatRWF(item.UnitPrice), utils.FormatRWF(item.Amount))
		pdf.MultiCell(0, 6, line, "", "", false)
		pdf.Ln(1)
	}
	pdf.Ln(4)

	pdf.Cell(0, 6, "Subtotal : "+utils.FormatRWF(inv.Subtotal))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Tax      : "+utils.FormatRWF(inv.Tax))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total    : "+utils.FormatRWF(inv.Total))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Paid     : "+utils.FormatRWF(inv.PaidAmount))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Balance  : "+utils.FormatRWF(inv.RemainingAmount))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Status: "+strings.ToUpper(inv.Status), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s.pdf", inv.InvoiceNumber)
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
