package submission

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesdesk/api-commissions/internal/commission"
)

const (
	// MaxDocumentSize is the upload ceiling for backing documents.
	MaxDocumentSize = 10 << 20 // 10 MB
	// DocumentContentType is the only accepted document kind.
	DocumentContentType = "application/pdf"
)

var oneCent = decimal.New(1, -2)

// ValidateRequest runs every pre-submission check and returns the full list
// of violations, so the caller can surface all of them at once. A nil return
// means the request may enter the calculator.
func ValidateRequest(req SubmissionRequest) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(req.PurchaseOrderNumber) == "" {
		errs.add("purchaseOrderNumber", "purchase order number is required")
	}
	if req.ClientRequiresInvoice && strings.TrimSpace(req.InvoiceNumber) == "" {
		errs.add("invoiceNumber", "invoice number is required when the client requires an invoice")
	}
	if strings.TrimSpace(req.ClientName) == "" {
		errs.add("clientName", "client name is required")
	}
	if strings.TrimSpace(req.DocumentPath) == "" {
		errs.add("documentPath", "backing document is required")
	}

	if req.AmountWithTax.IsNegative() {
		errs.add("amountWithTax", "amount cannot be negative")
	}
	if req.AmountWithoutTax.IsNegative() {
		errs.add("amountWithoutTax", "amount cannot be negative")
	}
	if req.AmountWithTax.IsZero() && req.AmountWithoutTax.IsZero() {
		errs.add("amountWithTax", "at least one amount must be entered")
	}
	// When both amounts are entered they must agree at the fixed tax rate,
	// within one cent.
	if req.AmountWithTax.IsPositive() && req.AmountWithoutTax.IsPositive() {
		derived := commission.DeriveWithTax(req.AmountWithoutTax)
		if req.AmountWithTax.Sub(derived).Abs().GreaterThan(oneCent) {
			errs.add("amountWithTax", "amounts do not agree at the 16% tax rate")
		}
	}

	if req.IsMarketplaceSale {
		if req.FeeSale.IsNegative() {
			errs.add("feeSale", "fee cannot be negative")
		}
		if req.FeeShipping.IsNegative() {
			errs.add("feeShipping", "fee cannot be negative")
		}
		// Fees come off the settled tax-inclusive amount; more fee than
		// sale would drive the commission below zero.
		grossed := req.AmountWithTax
		if grossed.IsZero() && req.AmountWithoutTax.IsPositive() {
			grossed = commission.DeriveWithTax(req.AmountWithoutTax)
		}
		if !req.FeeSale.IsNegative() && !req.FeeShipping.IsNegative() &&
			req.FeeSale.Add(req.FeeShipping).GreaterThan(grossed) {
			errs.add("feeSale", "marketplace fees cannot exceed the sale amount")
		}
	}

	documentDate := requireDate(&errs, "documentDate", req.DocumentDate)
	paymentDate := requireDate(&errs, "clientPaymentDate", req.ClientPaymentDate)
	if !documentDate.IsZero() && !paymentDate.IsZero() && paymentDate.Before(documentDate) {
		errs.add("clientPaymentDate", "payment date cannot be before the document date")
	}

	return errs
}

func requireDate(errs *ValidationErrors, field, value string) time.Time {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "date is required")
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		errs.add(field, "date must be in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}

// ValidateDocumentFile gates an upload before it reaches the blob store.
func ValidateDocumentFile(filename string, size int64, contentType string) ValidationErrors {
	var errs ValidationErrors
	if contentType != DocumentContentType && !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		errs.add("file", "only PDF documents are accepted")
	}
	if size > MaxDocumentSize {
		errs.add("file", "file must be smaller than 10 MB")
	}
	if size == 0 {
		errs.add("file", "file is empty")
	}
	return errs
}

// ValidateReceiptFile gates payout receipt uploads; receipts may be a PDF or
// an image.
func ValidateReceiptFile(filename string, size int64, contentType string) ValidationErrors {
	var errs ValidationErrors
	if contentType != DocumentContentType && !strings.HasPrefix(contentType, "image/") {
		errs.add("file", "receipt must be a PDF or an image")
	}
	if size > MaxDocumentSize {
		errs.add("file", "file must be smaller than 10 MB")
	}
	if size == 0 {
		errs.add("file", "file is empty")
	}
	return errs
}
