// internal/auth/refresh_model.go
package auth

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	FamilyID  string `gorm:"index"`
	Hash      string `gorm:"uniqueIndex"`
	Role      string `gorm:"size:20"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RefreshToken{})
}
