package database

import (
	"errors"
	"fmt"

	"fintrack/internal/models"

	"gorm.io/gorm"
)

// Default shared categories available to every user (UserID NULL).
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.TypeIncome, Icon: "briefcase", Active: true},
	{Name: "Other Income", Type: models.TypeIncome, Icon: "coins", Active: true},
	{Name: "Food & Dining", Type: models.TypeExpense, Icon: "utensils", Active: true},
	{Name: "Transport", Type: models.TypeExpense, Icon: "bus", Active: true},
	{Name: "Housing", Type: models.TypeExpense, Icon: "home", Active: true},
	{Name: "Shopping", Type: models.TypeExpense, Icon: "shopping-bag", Active: true},
	{Name: "Entertainment", Type: models.TypeExpense, Icon: "film", Active: true},
	{Name: "Health", Type: models.TypeExpense, Icon: "heart-pulse", Active: true},
	{Name: "Other Expense", Type: models.TypeExpense, Icon: "receipt", Active: true},
}

// SeedDefaultCategories inserts the shared default categories when missing.
// Safe to run on every startup.
func SeedDefaultCategories(db *gorm.DB) error {
	for _, c := range defaultCategories {
		var existing models.Category
		err := db.Where("user_id IS NULL AND name = ? AND type = ?", c.Name, c.Type).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup category %q: %w", c.Name, err)
		}
		cat := c
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	return nil
}
