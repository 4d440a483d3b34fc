package invite

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
)

// TTL is how long an invite token stays redeemable.
const TTL = 7 * 24 * time.Hour

// Invite is a manager-issued invitation for a new salesperson. The proposed
// commission rate becomes the salesperson's rate when the invite is
// accepted.
type Invite struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Email          string          `gorm:"size:255;not null;index" json:"email"`
	FullName       string          `gorm:"size:255;not null" json:"fullName"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"commissionRate"`
	Token          string          `gorm:"size:64;uniqueIndex;not null" json:"-"`
	InvitedBy      uint            `gorm:"not null" json:"invitedBy"`
	Status         Status          `gorm:"size:20;not null;default:'pending'" json:"status"`
	ExpiresAt      time.Time       `gorm:"not null" json:"expiresAt"`
	AcceptedAt     *time.Time      `json:"acceptedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Expired reports whether the token can no longer be redeemed.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Invite{})
}
