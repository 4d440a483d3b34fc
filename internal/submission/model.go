package submission

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/commission"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusFlagged     Status = "flagged"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusPaid        Status = "paid"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusPaid
}

type DocumentType string

const (
	DocumentInvoice       DocumentType = "invoice"
	DocumentPurchaseOrder DocumentType = "purchase_order"
)

// Submission is a commission claim. The commission_* fields are derived by
// the calculator and never hand-entered; CommissionRate is a snapshot of the
// salesperson's rate at creation time. Version backs optimistic locking: a
// stale writer loses with ErrConflict instead of silently overwriting.
type Submission struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	SalespersonID uint `gorm:"not null;index" json:"salespersonId"`

	DocumentType        DocumentType `gorm:"size:20;not null" json:"documentType"`
	InvoiceNumber       string       `gorm:"size:100" json:"invoiceNumber"`
	PurchaseOrderNumber string       `gorm:"size:100" json:"purchaseOrderNumber"`
	ClientName          string       `gorm:"size:255;not null" json:"clientName"`
	DocumentDate        time.Time    `gorm:"not null" json:"documentDate"`
	ClientPaymentDate   time.Time    `gorm:"not null" json:"clientPaymentDate"`
	PaymentDays         int          `gorm:"not null;default:0" json:"paymentDays"`

	AmountWithTax         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amountWithTax"`
	AmountWithoutTax      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amountWithoutTax"`
	ClientRequiresInvoice bool            `gorm:"not null;default:false" json:"clientRequiresInvoice"`

	IsMarketplaceSale    bool            `gorm:"not null;default:false" json:"isMarketplaceSale"`
	FeeSale              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"feeSale"`
	FeeShipping          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"feeShipping"`
	MarketplaceTotalFees decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"marketplaceTotalFees"`
	NetAmountAfterFees   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"netAmountAfterFees"`

	CommissionRate       decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"commissionRate"`
	CommissionTimeFactor decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"commissionTimeFactor"`
	BaseCommissionAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"baseCommissionAmount"`
	CommissionAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"commissionAmount"`

	Status            Status `gorm:"size:20;not null;default:'pending';index" json:"status"`
	DocumentPath      string `gorm:"size:512;not null" json:"documentPath"`
	PayoutReceiptPath string `gorm:"size:512" json:"payoutReceiptPath,omitempty"`
	Notes             string `gorm:"type:text" json:"notes,omitempty"`
	RejectionReason   string `gorm:"type:text" json:"rejectionReason,omitempty"`

	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	ReviewedAt *time.Time     `json:"reviewedAt,omitempty"`
	PaidAt     *time.Time     `json:"paidAt,omitempty"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// ApplyComputed copies every calculator output onto the record.
func (s *Submission) ApplyComputed(res commission.Result) {
	s.AmountWithTax = res.AmountWithTax
	s.AmountWithoutTax = res.AmountWithoutTax
	s.PaymentDays = res.PaymentDays
	s.CommissionTimeFactor = res.TimeFactor
	s.BaseCommissionAmount = res.BaseCommissionAmount
	s.CommissionAmount = res.CommissionAmount
	s.MarketplaceTotalFees = res.MarketplaceTotalFees
	s.NetAmountAfterFees = res.NetAmountAfterFees
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Submission{})
}
