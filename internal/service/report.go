package service

import (
	"fmt"
	"sort"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budgets at or above this usage show up in alerts.
var alertThreshold = decimal.NewFromInt(80)

// ReportService answers read-only queries over the ledger and the budget
// registry. It never mutates anything and never errors on missing data;
// empty months come back as zeroed aggregates.
type ReportService struct {
	db      *gorm.DB
	budgets *BudgetService
}

func NewReportService(db *gorm.DB, budgets *BudgetService) *ReportService {
	return &ReportService{db: db, budgets: budgets}
}

// MonthlySummary totals income and expense over one calendar month.
type MonthlySummary struct {
	Month            int
	Year             int
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetSavings       decimal.Decimal
	TransactionCount int
	AverageIncome    decimal.Decimal
	AverageExpense   decimal.Decimal
}

// CategoryShare is one category's slice of a monthly breakdown.
type CategoryShare struct {
	CategoryID       uint
	CategoryName     string
	CategoryIcon     string
	Total            decimal.Decimal
	Percentage       decimal.Decimal
	TransactionCount int
}

// CategoryBreakdownReport groups one month's entries of a type by category.
type CategoryBreakdownReport struct {
	Month     int
	Year      int
	Type      string
	Breakdown []CategoryShare
}

// TrendPoint is one month of a multi-month trend, oldest first.
type TrendPoint struct {
	Month        int
	Year         int
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetSavings   decimal.Decimal
}

func monthWindow(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

func resolveMonth(month, year int) (int, int) {
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}

// MonthlySummary reports totals, net savings and per-type averages for the
// given month, defaulting to the current one.
func (s *ReportService) MonthlySummary(userID uint, month, year int) (*MonthlySummary, error) {
	month, year = resolveMonth(month, year)
	start, end := monthWindow(month, year)

	var entries []models.Transaction
	err := s.db.Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, start, end).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load month entries: %w", err)
	}

	income, expense := decimal.Zero, decimal.Zero
	incomeCount, expenseCount := 0, 0
	for i := range entries {
		if entries[i].Type == models.TypeIncome {
			income = income.Add(entries[i].Amount)
			incomeCount++
		} else {
			expense = expense.Add(entries[i].Amount)
			expenseCount++
		}
	}

	avgIncome, avgExpense := decimal.Zero, decimal.Zero
	if incomeCount > 0 {
		avgIncome = income.DivRound(decimal.NewFromInt(int64(incomeCount)), 2)
	}
	if expenseCount > 0 {
		avgExpense = expense.DivRound(decimal.NewFromInt(int64(expenseCount)), 2)
	}

	return &MonthlySummary{
		Month:            month,
		Year:             year,
		TotalIncome:      income,
		TotalExpenses:    expense,
		NetSavings:       income.Sub(expense),
		TransactionCount: len(entries),
		AverageIncome:    avgIncome,
		AverageExpense:   avgExpense,
	}, nil
}

// CategoryBreakdown groups one month's entries of the given type by
// category, with each category's share of the type total, largest first.
func (s *ReportService) CategoryBreakdown(userID uint, month, year int, entryType string) (*CategoryBreakdownReport, error) {
	if entryType == "" {
		entryType = models.TypeExpense
	}
	if err := validateType(entryType); err != nil {
		return nil, err
	}
	month, year = resolveMonth(month, year)
	start, end := monthWindow(month, year)

	var entries []models.Transaction
	err := s.db.Preload("Category").
		Where("user_id = ? AND type = ? AND occurred_at >= ? AND occurred_at < ?", userID, entryType, start, end).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load month entries: %w", err)
	}

	grand := decimal.Zero
	byCategory := make(map[uint]*CategoryShare)
	for i := range entries {
		e := &entries[i]
		grand = grand.Add(e.Amount)

		share, ok := byCategory[e.CategoryID]
		if !ok {
			share = &CategoryShare{
				CategoryID:   e.CategoryID,
				CategoryName: e.Category.Name,
				CategoryIcon: e.Category.Icon,
			}
			byCategory[e.CategoryID] = share
		}
		share.Total = share.Total.Add(e.Amount)
		share.TransactionCount++
	}

	breakdown := make([]CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		if grand.IsPositive() {
			share.Percentage = share.Total.Mul(decimal.NewFromInt(100)).DivRound(grand, 2)
		}
		breakdown = append(breakdown, *share)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})

	return &CategoryBreakdownReport{
		Month:     month,
		Year:      year,
		Type:      entryType,
		Breakdown: breakdown,
	}, nil
}

// Trends computes the income/expense/net triple for each of the last
// `months` calendar months ending at the current one, oldest first.
// Months with no entries come back zeroed.
func (s *ReportService) Trends(userID uint, months int) ([]TrendPoint, error) {
	if months <= 0 {
		months = 6
	}

	now := time.Now()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := currentStart.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var entries []models.Transaction
		err := s.db.Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, start, end).
			Find(&entries).Error
		if err != nil {
			return nil, fmt.Errorf("load trend month: %w", err)
		}

		income, expense := decimal.Zero, decimal.Zero
		for j := range entries {
			if entries[j].Type == models.TypeIncome {
				income = income.Add(entries[j].Amount)
			} else {
				expense = expense.Add(entries[j].Amount)
			}
		}

		points = append(points, TrendPoint{
			Month:        int(start.Month()),
			Year:         start.Year(),
			TotalIncome:  income,
			TotalExpense: expense,
			NetSavings:   income.Sub(expense),
		})
	}
	return points, nil
}

// BudgetAlerts returns the caller's current-month budgets at or above the
// alert threshold, or already exceeded, sorted by usage descending. The
// threshold is a read-side policy, recomputed on every call.
func (s *ReportService) BudgetAlerts(userID uint) ([]BudgetStatus, error) {
	now := time.Now()
	statuses, err := s.budgets.List(userID, int(now.Month()), now.Year())
	if err != nil {
		return nil, err
	}

	alerts := make([]BudgetStatus, 0, len(statuses))
	for _, st := range statuses {
		if st.Exceeded || st.PercentUsed.GreaterThanOrEqual(alertThreshold) {
			alerts = append(alerts, st)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].PercentUsed.GreaterThan(alerts[j].PercentUsed)
	})
	return alerts, nil
}
