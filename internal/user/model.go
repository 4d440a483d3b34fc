package user

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var decimalOne = decimal.NewFromInt(1)

type Role string

const (
	RoleSalesperson Role = "salesperson"
	RoleManager     Role = "manager"
)

// User is a salesperson or a manager. CommissionRate is the salesperson's
// current rate; submissions snapshot it at creation time, so changing it here
// only affects submissions created afterwards.
type User struct {
	gorm.Model
	Email          string          `json:"email" gorm:"uniqueIndex;not null"`
	FullName       string          `json:"fullName"`
	EmployeeID     string          `json:"employeeId"`
	Role           Role            `json:"role" gorm:"size:20;not null;default:'salesperson';index"`
	CommissionRate decimal.Decimal `json:"commissionRate" gorm:"type:decimal(6,4);not null;default:0"`
	IsActive       bool            `json:"isActive" gorm:"not null;default:true"`
	IsApproved     bool            `json:"isApproved" gorm:"not null;default:false"`
	PasswordHash   string          `json:"-"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
