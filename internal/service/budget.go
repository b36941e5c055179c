package service

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetService stores spending ceilings per (user, category, month, year)
// and computes consumption against the ledger on read. Budgets never cache
// spend; every read recomputes it so the numbers are always fresh.
type BudgetService struct {
	db *gorm.DB
}

func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db}
}

// BudgetStatus is a budget joined with its current ledger consumption.
type BudgetStatus struct {
	BudgetID     uint
	CategoryID   uint
	CategoryName string
	CategoryIcon string
	Amount       decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	PercentUsed  decimal.Decimal
	Exceeded     bool
	Month        int
	Year         int
}

// BudgetPatch holds the scalar fields an update may change.
type BudgetPatch struct {
	Amount *decimal.Decimal
	Month  *int
	Year   *int
}

func validateBudgetScope(month, year int) error {
	if month < 1 || month > 12 {
		return badRequest("month", "month must be between 1 and 12, got %d", month)
	}
	if year < 2000 || year > 2100 {
		return badRequest("year", "year must be between 2000 and 2100, got %d", year)
	}
	return nil
}

// Create stores a new budget. The category must be an expense category the
// caller may use, and the (user, category, month, year) scope must be free.
func (s *BudgetService) Create(userID, categoryID uint, month, year int, amount decimal.Decimal) (*models.Budget, error) {
	if err := validateBudgetScope(month, year); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, badRequest("amount", "amount must be positive, got %s", amount)
	}

	var cat models.Category
	if err := s.db.First(&cat, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category", "category %d not found", categoryID)
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	if !cat.Shared() && *cat.UserID != userID {
		return nil, forbidden("category", "category belongs to another user")
	}
	if cat.Type != models.TypeExpense {
		return nil, badRequest("category", "budgets only apply to expense categories")
	}

	var count int64
	err := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?", userID, categoryID, month, year).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check budget scope: %w", err)
	}
	if count > 0 {
		return nil, conflict("budget", "a budget already exists for this category and month")
	}

	budget := models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		Year:       year,
		Amount:     amount,
	}
	if err := s.db.Create(&budget).Error; err != nil {
		// the unique index catches scope races the pre-check missed
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("budget", "a budget already exists for this category and month")
		}
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return &budget, nil
}

// List returns the caller's budgets for the given month/year (defaulting to
// the current month), each joined with its ledger consumption.
func (s *BudgetService) List(userID uint, month, year int) ([]BudgetStatus, error) {
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if err := validateBudgetScope(month, year); err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.Preload("Category").
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("id ASC").
		Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		st, err := s.status(userID, &budgets[i])
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Update changes a budget's own scalar fields; the ledger is untouched.
// Moving the budget to another month re-checks scope uniqueness.
func (s *BudgetService) Update(userID, id uint, patch BudgetPatch) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("budget", "budget %d not found", id)
		}
		return nil, fmt.Errorf("load budget: %w", err)
	}
	if budget.UserID != userID {
		return nil, forbidden("budget", "budget belongs to another user")
	}

	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, badRequest("amount", "amount must be positive, got %s", *patch.Amount)
		}
		budget.Amount = *patch.Amount
	}
	scopeChanged := false
	if patch.Month != nil {
		budget.Month = *patch.Month
		scopeChanged = true
	}
	if patch.Year != nil {
		budget.Year = *patch.Year
		scopeChanged = true
	}
	if scopeChanged {
		if err := validateBudgetScope(budget.Month, budget.Year); err != nil {
			return nil, err
		}
		var count int64
		err := s.db.Model(&models.Budget{}).
			Where("user_id = ? AND category_id = ? AND month = ? AND year = ? AND id <> ?",
				userID, budget.CategoryID, budget.Month, budget.Year, budget.ID).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("check budget scope: %w", err)
		}
		if count > 0 {
			return nil, conflict("budget", "a budget already exists for this category and month")
		}
	}

	if err := s.db.Save(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("budget", "a budget already exists for this category and month")
		}
		return nil, fmt.Errorf("save budget: %w", err)
	}
	return &budget, nil
}

// Delete removes a budget after an ownership check.
func (s *BudgetService) Delete(userID, id uint) error {
	var budget models.Budget
	if err := s.db.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("budget", "budget %d not found", id)
		}
		return fmt.Errorf("load budget: %w", err)
	}
	if budget.UserID != userID {
		return forbidden("budget", "budget belongs to another user")
	}
	if err := s.db.Delete(&models.Budget{}, budget.ID).Error; err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// status joins one budget with the expense total of its category inside the
// budget's month window.
func (s *BudgetService) status(userID uint, b *models.Budget) (BudgetStatus, error) {
	spent, err := s.spent(userID, b.CategoryID, b.Month, b.Year)
	if err != nil {
		return BudgetStatus{}, err
	}

	percent := decimal.Zero
	if b.Amount.IsPositive() {
		percent = spent.Mul(decimal.NewFromInt(100)).DivRound(b.Amount, 2)
	}

	return BudgetStatus{
		BudgetID:     b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: b.Category.Name,
		CategoryIcon: b.Category.Icon,
		Amount:       b.Amount,
		Spent:        spent,
		Remaining:    b.Amount.Sub(spent),
		PercentUsed:  percent,
		Exceeded:     spent.GreaterThan(b.Amount),
		Month:        b.Month,
		Year:         b.Year,
	}, nil
}

// spent sums the user's expense entries for a category within a calendar
// month. Summation happens in decimal form, not in SQL.
func (s *BudgetService) spent(userID, categoryID uint, month, year int) (decimal.Decimal, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var entries []models.Transaction
	err := s.db.
		Where("user_id = ? AND category_id = ? AND type = ? AND occurred_at >= ? AND occurred_at < ?",
			userID, categoryID, models.TypeExpense, start, end).
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum category spend: %w", err)
	}

	sum := decimal.Zero
	for i := range entries {
		sum = sum.Add(entries[i].Amount)
	}
	return sum, nil
}
