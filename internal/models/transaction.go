package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single ledger entry: a positive amount tagged as income
// or expense, tied to one account and one category. Deletes are hard deletes
// paired with a balance reversal, so there is no soft-delete column here.
type Transaction struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"index;not null"`
	AccountID  uint            `gorm:"index;not null"`
	CategoryID uint            `gorm:"index;not null"`
	Type       string          `gorm:"size:16;index;not null"` // income / expense
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	OccurredAt time.Time       `gorm:"index;not null"` // when the transaction happened
	Note       string          `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:RESTRICT"`
}

// SignedAmount is the entry's contribution to its account balance:
// positive for income, negative for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}
