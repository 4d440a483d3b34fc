package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesdesk/api-commissions/internal/submission"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func sampleSubmissions() []submission.Submission {
	march := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	return []submission.Submission{
		{
			SalespersonID: 7, Status: submission.StatusPaid, DocumentDate: march,
			ClientRequiresInvoice: true, PaymentDays: 30,
			AmountWithTax: d(11600), AmountWithoutTax: d(10000),
			CommissionAmount: d(500),
		},
		{
			SalespersonID: 7, Status: submission.StatusPending, DocumentDate: april,
			PaymentDays:   50,
			AmountWithTax: d(5800), AmountWithoutTax: d(5000),
			CommissionAmount: d(290),
		},
		{
			SalespersonID: 8, Status: submission.StatusApproved, DocumentDate: april,
			ClientRequiresInvoice: true, PaymentDays: 20,
			AmountWithTax: d(2320), AmountWithoutTax: d(2000),
			CommissionAmount: d(60),
		},
		{
			SalespersonID: 8, Status: submission.StatusRejected, DocumentDate: april,
			AmountWithTax: d(99999), AmountWithoutTax: d(86206.90),
			CommissionAmount: d(9999),
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleSubmissions())

	if sum.SubmissionCount != 4 {
		t.Errorf("count = %d, want 4", sum.SubmissionCount)
	}
	if !sum.TotalCommissions.Equal(d(850)) {
		t.Errorf("total commissions = %s, want 850; rejected must not count", sum.TotalCommissions)
	}
	if !sum.PendingAmount.Equal(d(350)) {
		t.Errorf("pending = %s, want 350 (pending + approved)", sum.PendingAmount)
	}
	if !sum.PaidAmount.Equal(d(500)) {
		t.Errorf("paid = %s, want 500", sum.PaidAmount)
	}
	// Invoiced sales report the net amount, the rest the gross.
	if !sum.TotalSales.Equal(d(17800)) {
		t.Errorf("sales = %s, want 17800 (10000 + 5800 + 2000)", sum.TotalSales)
	}
	// 850 across 3 earning submissions.
	if !sum.AverageCommission.Equal(d(283.33)) {
		t.Errorf("average = %s, want 283.33", sum.AverageCommission)
	}
	if sum.CountByStatus[submission.StatusRejected] != 1 {
		t.Errorf("rejected count = %d, want 1", sum.CountByStatus[submission.StatusRejected])
	}
}

func TestSummarizeFlaggedIsHeldOutOfPending(t *testing.T) {
	list := append(sampleSubmissions(), submission.Submission{
		SalespersonID: 7, Status: submission.StatusFlagged,
		DocumentDate:  time.Date(2024, time.April, 9, 0, 0, 0, 0, time.UTC),
		AmountWithTax: d(1160), AmountWithoutTax: d(1000),
		CommissionAmount: d(50),
	})
	sum := Summarize(list)

	// Flagged contributes to totals but not to the pending payout bucket.
	if !sum.TotalCommissions.Equal(d(900)) {
		t.Errorf("total commissions = %s, want 900", sum.TotalCommissions)
	}
	if !sum.PendingAmount.Equal(d(350)) {
		t.Errorf("pending = %s, want 350 with the flagged submission held out", sum.PendingAmount)
	}
	if sum.CountByStatus[submission.StatusFlagged] != 1 {
		t.Errorf("flagged count = %d, want 1", sum.CountByStatus[submission.StatusFlagged])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.SubmissionCount != 0 || !sum.AverageCommission.IsZero() {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestBySalesperson(t *testing.T) {
	stats := BySalesperson(sampleSubmissions())
	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}
	// Sorted by commissions descending: salesperson 7 (790) above 8 (60).
	if stats[0].SalespersonID != 7 || stats[1].SalespersonID != 8 {
		t.Fatalf("order = %d, %d", stats[0].SalespersonID, stats[1].SalespersonID)
	}
	if !stats[0].TotalCommissions.Equal(d(790)) {
		t.Errorf("salesperson 7 commissions = %s, want 790", stats[0].TotalCommissions)
	}
	if stats[1].SubmissionCount != 2 {
		t.Errorf("salesperson 8 count = %d, want 2 (rejected still counts)", stats[1].SubmissionCount)
	}
	if !stats[1].TotalCommissions.Equal(d(60)) {
		t.Errorf("salesperson 8 commissions = %s, want 60", stats[1].TotalCommissions)
	}
	// Salesperson 7: one decision (the paid one), favorable.
	if !stats[0].ApprovalRate.Equal(d(1)) {
		t.Errorf("salesperson 7 approval rate = %s, want 1", stats[0].ApprovalRate)
	}
	// Salesperson 8: one approved, one rejected.
	if !stats[1].ApprovalRate.Equal(d(0.5)) {
		t.Errorf("salesperson 8 approval rate = %s, want 0.5", stats[1].ApprovalRate)
	}
	if !stats[0].AvgPaymentDays.Equal(d(40)) {
		t.Errorf("salesperson 7 avg payment days = %s, want 40", stats[0].AvgPaymentDays)
	}
	if !stats[1].AvgPaymentDays.Equal(d(20)) {
		t.Errorf("salesperson 8 avg payment days = %s, want 20 (rejected excluded)", stats[1].AvgPaymentDays)
	}
}

func TestMonthly(t *testing.T) {
	points := Monthly(sampleSubmissions())
	if len(points) != 2 {
		t.Fatalf("got %d months, want 2", len(points))
	}
	if points[0].Month != "2024-03" || points[1].Month != "2024-04" {
		t.Fatalf("months = %s, %s", points[0].Month, points[1].Month)
	}
	if !points[0].Commissions.Equal(d(500)) || points[0].Count != 1 {
		t.Errorf("march = %+v", points[0])
	}
	// April: pending 290 + approved 60; rejected skipped.
	if !points[1].Commissions.Equal(d(350)) || points[1].Count != 2 {
		t.Errorf("april = %+v", points[1])
	}
	if !points[1].Sales.Equal(d(7800)) {
		t.Errorf("april sales = %s, want 7800", points[1].Sales)
	}
	if !points[0].PaidAmount.Equal(d(500)) || !points[0].PendingAmount.IsZero() {
		t.Errorf("march paid/pending = %s/%s", points[0].PaidAmount, points[0].PendingAmount)
	}
	if !points[1].PendingAmount.Equal(d(350)) || !points[1].PaidAmount.IsZero() {
		t.Errorf("april paid/pending = %s/%s", points[1].PaidAmount, points[1].PendingAmount)
	}
}
