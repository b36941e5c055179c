package models

import "time"

// Transaction / category type tags.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Category classifies transactions as income or expense.
// UserID is NULL for shared default categories that every user may use.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	Name      string `gorm:"size:64;not null"`
	Type      string `gorm:"size:16;index;not null"` // income / expense
	Icon      string `gorm:"size:32"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shared reports whether the category is a shared default.
func (c *Category) Shared() bool {
	return c.UserID == nil
}
