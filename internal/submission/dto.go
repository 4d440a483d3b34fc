package submission

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// SubmissionRequest is the payload for creating a submission and for editing
// one that is still pending. Amounts accept JSON numbers or strings; at
// least one of the two must be entered, the other is derived at the fixed
// tax rate.
type SubmissionRequest struct {
	PurchaseOrderNumber   string          `json:"purchaseOrderNumber"`
	InvoiceNumber         string          `json:"invoiceNumber"`
	ClientRequiresInvoice bool            `json:"clientRequiresInvoice"`
	ClientName            string          `json:"clientName"`
	DocumentDate          string          `json:"documentDate"`
	ClientPaymentDate     string          `json:"clientPaymentDate"`
	AmountWithTax         decimal.Decimal `json:"amountWithTax"`
	AmountWithoutTax      decimal.Decimal `json:"amountWithoutTax"`
	IsMarketplaceSale     bool            `json:"isMarketplaceSale"`
	FeeSale               decimal.Decimal `json:"feeSale"`
	FeeShipping           decimal.Decimal `json:"feeShipping"`
	DocumentPath          string          `json:"documentPath"`
}

// Dates parses the two date fields. Validation reports unparseable values;
// here a bad value just comes back as the zero time.
func (r SubmissionRequest) Dates() (documentDate, paymentDate time.Time) {
	documentDate, _ = time.Parse(DateLayout, r.DocumentDate)
	paymentDate, _ = time.Parse(DateLayout, r.ClientPaymentDate)
	return documentDate, paymentDate
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

type markPaidRequest struct {
	PaymentDate      string `json:"paymentDate"`
	PaymentReference string `json:"paymentReference"`
	PaymentMethod    string `json:"paymentMethod"`
	ReceiptPath      string `json:"receiptPath"`
	Notes            string `json:"notes"`
}

// ListResponse wraps a page of submissions.
type ListResponse struct {
	Submissions []Submission `json:"submissions"`
	Total       int64        `json:"total"`
	Page        int          `json:"page"`
	PerPage     int          `json:"perPage"`
}
