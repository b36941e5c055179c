package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps expense spending for one category in one calendar month.
// At most one budget may exist per (user, category, month, year); the
// composite unique index enforces the scope at the storage level.
type Budget struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"uniqueIndex:idx_budget_scope;not null"`
	CategoryID uint            `gorm:"uniqueIndex:idx_budget_scope;not null"`
	Month      int             `gorm:"uniqueIndex:idx_budget_scope;not null"` // 1-12
	Year       int             `gorm:"uniqueIndex:idx_budget_scope;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:CASCADE"`
}
