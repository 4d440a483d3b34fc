package submission

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validRequest() SubmissionRequest {
	return SubmissionRequest{
		PurchaseOrderNumber:   "PO-1001",
		InvoiceNumber:         "A-2201",
		ClientRequiresInvoice: true,
		ClientName:            "Comercial del Norte",
		DocumentDate:          "2024-03-01",
		ClientPaymentDate:     "2024-03-20",
		AmountWithTax:         decimal.NewFromInt(11600),
		DocumentPath:          "/uploads/documents/po-1001.pdf",
	}
}

func fieldsOf(errs ValidationErrors) map[string]bool {
	fields := make(map[string]bool, len(errs))
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	return fields
}

func TestValidateRequestAccepts(t *testing.T) {
	if errs := ValidateRequest(validRequest()); errs != nil {
		t.Fatalf("valid request rejected: %v", errs)
	}
}

func TestValidateRequestSingleField(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*SubmissionRequest)
		wantField string
	}{
		{"missing PO number", func(r *SubmissionRequest) { r.PurchaseOrderNumber = "  " }, "purchaseOrderNumber"},
		{"invoice required but missing", func(r *SubmissionRequest) { r.InvoiceNumber = "" }, "invoiceNumber"},
		{"missing client name", func(r *SubmissionRequest) { r.ClientName = "" }, "clientName"},
		{"missing document", func(r *SubmissionRequest) { r.DocumentPath = "" }, "documentPath"},
		{"negative amount", func(r *SubmissionRequest) { r.AmountWithTax = decimal.NewFromInt(-5) }, "amountWithTax"},
		{"negative net amount", func(r *SubmissionRequest) {
			r.AmountWithoutTax = decimal.NewFromInt(-5)
		}, "amountWithoutTax"},
		{"amounts disagree", func(r *SubmissionRequest) {
			r.AmountWithoutTax = decimal.NewFromInt(9000) // 9000 * 1.16 = 10440, far from 11600
		}, "amountWithTax"},
		{"negative marketplace fee", func(r *SubmissionRequest) {
			r.IsMarketplaceSale = true
			r.FeeSale = decimal.NewFromInt(-1)
		}, "feeSale"},
		{"marketplace fees above sale amount", func(r *SubmissionRequest) {
			r.IsMarketplaceSale = true
			r.FeeSale = decimal.NewFromInt(11000)
			r.FeeShipping = decimal.NewFromInt(700)
		}, "feeSale"},
		{"missing document date", func(r *SubmissionRequest) { r.DocumentDate = "" }, "documentDate"},
		{"malformed date", func(r *SubmissionRequest) { r.ClientPaymentDate = "20/03/2024" }, "clientPaymentDate"},
		{"payment before document", func(r *SubmissionRequest) {
			r.ClientPaymentDate = "2024-02-01"
		}, "clientPaymentDate"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validRequest()
			c.mutate(&req)
			errs := ValidateRequest(req)
			if !fieldsOf(errs)[c.wantField] {
				t.Errorf("got %v, want a violation on %q", errs, c.wantField)
			}
		})
	}
}

func TestValidateRequestInvoiceOptional(t *testing.T) {
	req := validRequest()
	req.ClientRequiresInvoice = false
	req.InvoiceNumber = ""
	if errs := ValidateRequest(req); errs != nil {
		t.Fatalf("invoice number must be optional without an invoice requirement: %v", errs)
	}
}

func TestValidateRequestBothAmountsAgreeing(t *testing.T) {
	req := validRequest()
	req.AmountWithoutTax = decimal.NewFromInt(10000) // 10000 * 1.16 = 11600 exactly
	if errs := ValidateRequest(req); errs != nil {
		t.Fatalf("agreeing amounts rejected: %v", errs)
	}
}

func TestValidateRequestMarketplaceFeesAtSaleAmount(t *testing.T) {
	req := validRequest()
	req.IsMarketplaceSale = true
	req.FeeSale = decimal.NewFromInt(11000)
	req.FeeShipping = decimal.NewFromInt(600)
	if errs := ValidateRequest(req); errs != nil {
		t.Fatalf("fees equal to the sale amount rejected: %v", errs)
	}
}

func TestValidateRequestMarketplaceFeesAgainstDerivedAmount(t *testing.T) {
	req := validRequest()
	req.AmountWithTax = decimal.Zero
	req.AmountWithoutTax = decimal.NewFromInt(10000) // settles at 11600 gross
	req.IsMarketplaceSale = true
	req.FeeSale = decimal.NewFromInt(11700)
	if !fieldsOf(ValidateRequest(req))["feeSale"] {
		t.Fatal("fees above the derived gross amount accepted")
	}
}

func TestValidateRequestBothAmountsZero(t *testing.T) {
	req := validRequest()
	req.AmountWithTax = decimal.Zero
	req.AmountWithoutTax = decimal.Zero
	if !fieldsOf(ValidateRequest(req))["amountWithTax"] {
		t.Fatal("want a violation when no amount is entered")
	}
}

func TestValidateRequestReportsAllViolations(t *testing.T) {
	req := SubmissionRequest{
		ClientRequiresInvoice: true,
		AmountWithTax:         decimal.NewFromInt(-100),
	}
	errs := ValidateRequest(req)
	fields := fieldsOf(errs)
	for _, want := range []string{
		"purchaseOrderNumber", "invoiceNumber", "clientName", "documentPath",
		"amountWithTax", "documentDate", "clientPaymentDate",
	} {
		if !fields[want] {
			t.Errorf("missing violation for %q in %v", want, errs)
		}
	}
}

func TestValidateDocumentFile(t *testing.T) {
	if errs := ValidateDocumentFile("po.pdf", 1024, "application/pdf"); errs != nil {
		t.Fatalf("valid PDF rejected: %v", errs)
	}
	if errs := ValidateDocumentFile("po.PDF", 1024, "application/octet-stream"); errs != nil {
		t.Fatalf("pdf extension with generic content type rejected: %v", errs)
	}
	if ValidateDocumentFile("photo.png", 1024, "image/png") == nil {
		t.Error("image accepted as backing document")
	}
	if ValidateDocumentFile("po.pdf", MaxDocumentSize+1, "application/pdf") == nil {
		t.Error("oversize file accepted")
	}
	if ValidateDocumentFile("po.pdf", 0, "application/pdf") == nil {
		t.Error("empty file accepted")
	}
}

func TestValidateReceiptFile(t *testing.T) {
	if errs := ValidateReceiptFile("receipt.pdf", 1024, "application/pdf"); errs != nil {
		t.Fatalf("PDF receipt rejected: %v", errs)
	}
	if errs := ValidateReceiptFile("receipt.jpg", 1024, "image/jpeg"); errs != nil {
		t.Fatalf("image receipt rejected: %v", errs)
	}
	if ValidateReceiptFile("receipt.zip", 1024, "application/zip") == nil {
		t.Error("archive accepted as receipt")
	}
}
