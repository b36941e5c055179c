package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a money container owned by exactly one user.
// Balance is a derived cache: it must always equal the opening balance plus
// the signed sum of all live transactions referencing the account. Only the
// service layer's atomic delta updates may touch it on the write path.
type Account struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"index;not null"`
	Name           string          `gorm:"size:64;not null"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	AllowNegative  bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
