// internal/commission/calculator.go
package commission

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the fixed 16% IVA rate used to derive the tax-inclusive and
// tax-exclusive amounts from each other.
var TaxRate = decimal.NewFromFloat(0.16)

var (
	one        = decimal.NewFromInt(1)
	onePlusTax = one.Add(TaxRate) // 1.16
	oneLessTax = one.Sub(TaxRate) // 0.84
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDateOrder = errors.New("payment date before document date")
	ErrMissingDates     = errors.New("document date and payment date are required")
	ErrInvalidRate      = errors.New("commission rate must be between 0 and 1")
)

// Input carries the declared sale data plus the salesperson's rate snapshot.
// At least one of AmountWithTax / AmountWithoutTax must be entered; the other
// is derived at the fixed tax rate. Marketplace fees default to zero.
type Input struct {
	AmountWithTax         decimal.Decimal
	AmountWithoutTax      decimal.Decimal
	ClientRequiresInvoice bool
	IsMarketplaceSale     bool
	FeeSale               decimal.Decimal
	FeeShipping           decimal.Decimal
	DocumentDate          time.Time
	ClientPaymentDate     time.Time
	CommissionRate        decimal.Decimal
}

// Result holds every computed field that gets persisted on a submission.
type Result struct {
	AmountWithTax    decimal.Decimal
	AmountWithoutTax decimal.Decimal
	PaymentDays      int
	TimeFactor       decimal.Decimal

	// CommissionBase is the amount the rate is applied to, after base
	// selection and (for marketplace sales) fee netting and tax back-out.
	CommissionBase       decimal.Decimal
	BaseCommissionAmount decimal.Decimal
	CommissionAmount     decimal.Decimal

	MarketplaceTotalFees decimal.Decimal
	NetAmountAfterFees   decimal.Decimal
}

// DeriveWithTax converts a tax-exclusive amount to tax-inclusive, rounded to
// two places.
func DeriveWithTax(withoutTax decimal.Decimal) decimal.Decimal {
	return withoutTax.Mul(onePlusTax).Round(2)
}

// DeriveWithoutTax converts a tax-inclusive amount to tax-exclusive, rounded
// to two places.
func DeriveWithoutTax(withTax decimal.Decimal) decimal.Decimal {
	return withTax.Div(onePlusTax).Round(2)
}

// PaymentDays returns the floor of whole days between the document date and
// the client payment date.
func PaymentDays(documentDate, paymentDate time.Time) int {
	return int(paymentDate.Sub(documentDate) / (24 * time.Hour))
}

// TimeFactor maps payment days onto the decay band. Bands are inclusive of
// their upper bound: 0-45 pays full, 46-60 pays 70%, 61-90 pays 50%, 91+
// pays nothing.
func TimeFactor(paymentDays int) decimal.Decimal {
	switch {
	case paymentDays <= 45:
		return decimal.NewFromInt(1)
	case paymentDays <= 60:
		return decimal.NewFromFloat(0.7)
	case paymentDays <= 90:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// Compute derives the commission for a submission. It is a pure function:
// no I/O, safe for any number of concurrent callers.
//
// A zero final amount (payment after 90 days) is a valid result, not an
// error.
func Compute(in Input) (Result, error) {
	if in.AmountWithTax.IsNegative() || in.AmountWithoutTax.IsNegative() {
		return Result{}, ErrInvalidAmount
	}
	if in.AmountWithTax.IsZero() && in.AmountWithoutTax.IsZero() {
		return Result{}, ErrInvalidAmount
	}
	if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(one) {
		return Result{}, ErrInvalidRate
	}
	if in.DocumentDate.IsZero() || in.ClientPaymentDate.IsZero() {
		return Result{}, ErrMissingDates
	}
	if in.ClientPaymentDate.Before(in.DocumentDate) {
		return Result{}, ErrInvalidDateOrder
	}

	withTax := in.AmountWithTax
	withoutTax := in.AmountWithoutTax
	if withTax.IsZero() {
		withTax = DeriveWithTax(withoutTax)
	} else if withoutTax.IsZero() {
		withoutTax = DeriveWithoutTax(withTax)
	}

	res := Result{
		AmountWithTax:    withTax,
		AmountWithoutTax: withoutTax,
	}

	var base decimal.Decimal
	if in.IsMarketplaceSale {
		if in.FeeSale.IsNegative() || in.FeeShipping.IsNegative() {
			return Result{}, ErrInvalidAmount
		}
		totalFees := in.FeeSale.Add(in.FeeShipping)
		// Fees come off the tax-inclusive amount: that is what the
		// marketplace actually settled before deducting them. The
		// separately entered tax-exclusive amount is never the base
		// here, because fees change the sub-base.
		netAfterFees := withTax.Sub(totalFees)
		if netAfterFees.IsNegative() {
			return Result{}, ErrInvalidAmount
		}
		if in.ClientRequiresInvoice {
			base = netAfterFees.Mul(oneLessTax)
		} else {
			base = netAfterFees
		}
		res.MarketplaceTotalFees = totalFees
		res.NetAmountAfterFees = netAfterFees.Round(2)
	} else {
		if in.ClientRequiresInvoice {
			base = withoutTax
		} else {
			base = withTax
		}
	}

	res.PaymentDays = PaymentDays(in.DocumentDate, in.ClientPaymentDate)
	res.TimeFactor = TimeFactor(res.PaymentDays)

	res.CommissionBase = base.Round(2)
	res.BaseCommissionAmount = res.CommissionBase.Mul(in.CommissionRate).Round(2)
	// Kept as the exact product so commission_amount is always
	// base_commission_amount x time_factor with no rounding drift.
	res.CommissionAmount = res.BaseCommissionAmount.Mul(res.TimeFactor)

	return res, nil
}
