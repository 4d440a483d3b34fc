package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salesdesk/api-commissions/internal/submission"
)

// Summary is the headline view of a set of submissions.
type Summary struct {
	TotalCommissions  decimal.Decimal           `json:"totalCommissions"`
	PendingAmount     decimal.Decimal           `json:"pendingAmount"`
	PaidAmount        decimal.Decimal           `json:"paidAmount"`
	TotalSales        decimal.Decimal           `json:"totalSales"`
	SubmissionCount   int                       `json:"submissionCount"`
	AverageCommission decimal.Decimal           `json:"averageCommission"`
	CountByStatus     map[submission.Status]int `json:"countByStatus"`
}

// SalespersonStats is one row of the per-salesperson breakdown.
type SalespersonStats struct {
	SalespersonID    uint            `json:"salespersonId"`
	SubmissionCount  int             `json:"submissionCount"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalCommissions decimal.Decimal `json:"totalCommissions"`
	PendingAmount    decimal.Decimal `json:"pendingAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	// ApprovalRate is approved+paid over all decided submissions; zero
	// until the first decision lands.
	ApprovalRate   decimal.Decimal `json:"approvalRate"`
	AvgPaymentDays decimal.Decimal `json:"avgPaymentDays"`

	decided   int
	favorable int
	days      int
	earning   int
}

// MonthlyPoint is one month of the time series, keyed by document date.
type MonthlyPoint struct {
	Month         string          `json:"month"` // YYYY-MM
	Sales         decimal.Decimal `json:"sales"`
	Commissions   decimal.Decimal `json:"commissions"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Count         int             `json:"count"`
}

// pending covers the states where a commission is on track to be paid out.
// Flagged submissions are excluded until a manager clears them; rejected
// claims earn nothing and count nowhere.
func pending(s submission.Status) bool {
	switch s {
	case submission.StatusPending, submission.StatusUnderReview,
		submission.StatusApproved:
		return true
	}
	return false
}

func decided(s submission.Status) bool {
	switch s {
	case submission.StatusApproved, submission.StatusRejected, submission.StatusPaid:
		return true
	}
	return false
}

// salesValue is what the sale was worth for reporting: the invoiced net
// amount when the client required an invoice, the gross amount otherwise.
func salesValue(s submission.Submission) decimal.Decimal {
	if s.ClientRequiresInvoice {
		return s.AmountWithoutTax
	}
	return s.AmountWithTax
}

// Summarize reduces a set of submissions to the headline numbers. Rejected
// submissions count toward SubmissionCount but contribute no amounts.
func Summarize(list []submission.Submission) Summary {
	sum := Summary{
		TotalCommissions:  decimal.Zero,
		PendingAmount:     decimal.Zero,
		PaidAmount:        decimal.Zero,
		TotalSales:        decimal.Zero,
		AverageCommission: decimal.Zero,
		CountByStatus:     make(map[submission.Status]int),
	}
	earning := 0
	for _, s := range list {
		sum.SubmissionCount++
		sum.CountByStatus[s.Status]++
		if s.Status == submission.StatusRejected {
			continue
		}
		earning++
		sum.TotalSales = sum.TotalSales.Add(salesValue(s))
		sum.TotalCommissions = sum.TotalCommissions.Add(s.CommissionAmount)
		if pending(s.Status) {
			sum.PendingAmount = sum.PendingAmount.Add(s.CommissionAmount)
		}
		if s.Status == submission.StatusPaid {
			sum.PaidAmount = sum.PaidAmount.Add(s.CommissionAmount)
		}
	}
	if earning > 0 {
		sum.AverageCommission = sum.TotalCommissions.Div(decimal.NewFromInt(int64(earning))).Round(2)
	}
	return sum
}

// BySalesperson breaks the set down per salesperson, sorted by total
// commissions descending.
func BySalesperson(list []submission.Submission) []SalespersonStats {
	byID := make(map[uint]*SalespersonStats)
	for _, s := range list {
		st, ok := byID[s.SalespersonID]
		if !ok {
			st = &SalespersonStats{
				SalespersonID:    s.SalespersonID,
				TotalSales:       decimal.Zero,
				TotalCommissions: decimal.Zero,
				PendingAmount:    decimal.Zero,
				PaidAmount:       decimal.Zero,
				ApprovalRate:     decimal.Zero,
				AvgPaymentDays:   decimal.Zero,
			}
			byID[s.SalespersonID] = st
		}
		st.SubmissionCount++
		if decided(s.Status) {
			st.decided++
			if s.Status != submission.StatusRejected {
				st.favorable++
			}
		}
		if s.Status == submission.StatusRejected {
			continue
		}
		st.earning++
		st.days += s.PaymentDays
		st.TotalSales = st.TotalSales.Add(salesValue(s))
		st.TotalCommissions = st.TotalCommissions.Add(s.CommissionAmount)
		if pending(s.Status) {
			st.PendingAmount = st.PendingAmount.Add(s.CommissionAmount)
		}
		if s.Status == submission.StatusPaid {
			st.PaidAmount = st.PaidAmount.Add(s.CommissionAmount)
		}
	}

	out := make([]SalespersonStats, 0, len(byID))
	for _, st := range byID {
		if st.decided > 0 {
			st.ApprovalRate = decimal.NewFromInt(int64(st.favorable)).
				Div(decimal.NewFromInt(int64(st.decided))).Round(2)
		}
		if st.earning > 0 {
			st.AvgPaymentDays = decimal.NewFromInt(int64(st.days)).
				Div(decimal.NewFromInt(int64(st.earning))).Round(1)
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalCommissions.Equal(out[j].TotalCommissions) {
			return out[i].TotalCommissions.GreaterThan(out[j].TotalCommissions)
		}
		return out[i].SalespersonID < out[j].SalespersonID
	})
	return out
}

// Monthly builds the month-by-month series from document dates, oldest
// first. Rejected submissions are skipped.
func Monthly(list []submission.Submission) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, s := range list {
		if s.Status == submission.StatusRejected {
			continue
		}
		key := s.DocumentDate.Format("2006-01")
		p, ok := byMonth[key]
		if !ok {
			p = &MonthlyPoint{
				Month:         key,
				Sales:         decimal.Zero,
				Commissions:   decimal.Zero,
				PendingAmount: decimal.Zero,
				PaidAmount:    decimal.Zero,
			}
			byMonth[key] = p
		}
		p.Count++
		p.Sales = p.Sales.Add(salesValue(s))
		p.Commissions = p.Commissions.Add(s.CommissionAmount)
		if pending(s.Status) {
			p.PendingAmount = p.PendingAmount.Add(s.CommissionAmount)
		}
		if s.Status == submission.StatusPaid {
			p.PaidAmount = p.PaidAmount.Add(s.CommissionAmount)
		}
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
