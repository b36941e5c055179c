package service

import (
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedEntry(t *testing.T, db *gorm.DB, userID, accountID, categoryID uint, typ, amount string, occurredAt time.Time) {
	t.Helper()
	entry := models.Transaction{
		UserID:     userID,
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       typ,
		Amount:     mustDecimal(t, amount),
		OccurredAt: occurredAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}

func TestMonthlySummary(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewReportService(db, NewBudgetService(db))

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	seedEntry(t, db, user.ID, account.ID, salary.ID, models.TypeIncome, "1000.00", now)
	seedEntry(t, db, user.ID, account.ID, salary.ID, models.TypeIncome, "500.00", now)
	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "300.00", now)
	// another user's entry in the same window is invisible
	other := seedUser(t, db, "bob")
	otherAccount := seedAccount(t, db, other.ID, "0", true)
	seedEntry(t, db, other.ID, otherAccount.ID, food.ID, models.TypeExpense, "999.00", now)

	summary, err := svc.MonthlySummary(user.ID, month, year)
	if err != nil {
		t.Fatalf("MonthlySummary() error = %v", err)
	}

	if !summary.TotalIncome.Equal(mustDecimal(t, "1500.00")) {
		t.Errorf("totalIncome = %s, want 1500.00", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(mustDecimal(t, "300.00")) {
		t.Errorf("totalExpenses = %s, want 300.00", summary.TotalExpenses)
	}
	if !summary.NetSavings.Equal(mustDecimal(t, "1200.00")) {
		t.Errorf("netSavings = %s, want 1200.00", summary.NetSavings)
	}
	if summary.TransactionCount != 3 {
		t.Errorf("transactionCount = %d, want 3", summary.TransactionCount)
	}
	if !summary.AverageIncome.Equal(mustDecimal(t, "750.00")) {
		t.Errorf("averageIncome = %s, want 750.00", summary.AverageIncome)
	}
	if !summary.AverageExpense.Equal(mustDecimal(t, "300.00")) {
		t.Errorf("averageExpense = %s, want 300.00", summary.AverageExpense)
	}
}

func TestMonthlySummary_EmptyMonthIsZeroed(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	svc := NewReportService(db, NewBudgetService(db))

	summary, err := svc.MonthlySummary(user.ID, 1, 2020)
	if err != nil {
		t.Fatalf("MonthlySummary() error = %v", err)
	}
	if !summary.TotalIncome.IsZero() || !summary.TotalExpenses.IsZero() ||
		!summary.AverageIncome.IsZero() || !summary.AverageExpense.IsZero() {
		t.Errorf("empty month not zeroed: %+v", summary)
	}
	if summary.TransactionCount != 0 {
		t.Errorf("transactionCount = %d, want 0", summary.TransactionCount)
	}
}

func TestCategoryBreakdown_PercentagesSumTo100(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	transport := seedCategory(t, db, nil, "Transport", models.TypeExpense)
	housing := seedCategory(t, db, nil, "Housing", models.TypeExpense)
	svc := NewReportService(db, NewBudgetService(db))

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "120.00", now)
	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "80.00", now)
	seedEntry(t, db, user.ID, account.ID, transport.ID, models.TypeExpense, "100.00", now)
	seedEntry(t, db, user.ID, account.ID, housing.ID, models.TypeExpense, "33.33", now)

	report, err := svc.CategoryBreakdown(user.ID, month, year, models.TypeExpense)
	if err != nil {
		t.Fatalf("CategoryBreakdown() error = %v", err)
	}
	if len(report.Breakdown) != 3 {
		t.Fatalf("len(breakdown) = %d, want 3", len(report.Breakdown))
	}

	// sorted by total descending
	if report.Breakdown[0].CategoryName != "Food" {
		t.Errorf("breakdown[0] = %q, want Food", report.Breakdown[0].CategoryName)
	}
	if report.Breakdown[0].TransactionCount != 2 {
		t.Errorf("food count = %d, want 2", report.Breakdown[0].TransactionCount)
	}
	for i := 1; i < len(report.Breakdown); i++ {
		if report.Breakdown[i].Total.GreaterThan(report.Breakdown[i-1].Total) {
			t.Errorf("breakdown not sorted by total descending")
		}
	}

	sum := decimal.Zero
	for _, share := range report.Breakdown {
		sum = sum.Add(share.Percentage)
	}
	// rounding leaves the sum within a few hundredths of 100
	if sum.Sub(mustDecimal(t, "100")).Abs().GreaterThan(mustDecimal(t, "0.05")) {
		t.Errorf("percentages sum = %s, want ~100", sum)
	}
}

func TestCategoryBreakdown_DefaultsToExpense(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewReportService(db, NewBudgetService(db))

	now := time.Now()
	seedEntry(t, db, user.ID, account.ID, salary.ID, models.TypeIncome, "100.00", now)
	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "40.00", now)

	report, err := svc.CategoryBreakdown(user.ID, 0, 0, "")
	if err != nil {
		t.Fatalf("CategoryBreakdown() error = %v", err)
	}
	if report.Type != models.TypeExpense {
		t.Errorf("type = %q, want expense", report.Type)
	}
	if len(report.Breakdown) != 1 || report.Breakdown[0].CategoryName != "Food" {
		t.Errorf("breakdown = %+v, want only Food", report.Breakdown)
	}
	if !report.Breakdown[0].Percentage.Equal(mustDecimal(t, "100")) {
		t.Errorf("single category percentage = %s, want 100", report.Breakdown[0].Percentage)
	}
}

func TestTrends_OldestFirstWithZeroMonths(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewReportService(db, NewBudgetService(db))

	now := time.Now()
	seedEntry(t, db, user.ID, account.ID, salary.ID, models.TypeIncome, "300.00", now)
	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "100.00", now)
	// two months back
	seedEntry(t, db, user.ID, account.ID, salary.ID, models.TypeIncome, "50.00", monthsBack(2))

	points, err := svc.Trends(user.ID, 3)
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}

	// oldest first; the last point is the current month
	last := points[2]
	if last.Month != int(now.Month()) || last.Year != now.Year() {
		t.Errorf("last point = %d/%d, want current month", last.Month, last.Year)
	}
	if !last.TotalIncome.Equal(mustDecimal(t, "300.00")) || !last.NetSavings.Equal(mustDecimal(t, "200.00")) {
		t.Errorf("current month point = %+v", last)
	}
	if !points[0].TotalIncome.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("oldest point income = %s, want 50.00", points[0].TotalIncome)
	}
	// the middle month had no entries and comes back zeroed
	if !points[1].TotalIncome.IsZero() || !points[1].TotalExpense.IsZero() {
		t.Errorf("empty month point = %+v, want zeroes", points[1])
	}

	// default window
	defaults, err := svc.Trends(user.ID, 0)
	if err != nil {
		t.Fatalf("Trends(default) error = %v", err)
	}
	if len(defaults) != 6 {
		t.Errorf("default len = %d, want 6", len(defaults))
	}
}

func TestBudgetAlerts_ThresholdFilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	transport := seedCategory(t, db, nil, "Transport", models.TypeExpense)
	housing := seedCategory(t, db, nil, "Housing", models.TypeExpense)
	shopping := seedCategory(t, db, nil, "Shopping", models.TypeExpense)
	budgets := NewBudgetService(db)
	svc := NewReportService(db, budgets)

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	mustCreateBudget := func(categoryID uint, amount string) {
		t.Helper()
		if _, err := budgets.Create(user.ID, categoryID, month, year, mustDecimal(t, amount)); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}

	// 79.99% used: excluded
	mustCreateBudget(food.ID, "10000.00")
	seedEntry(t, db, user.ID, account.ID, food.ID, models.TypeExpense, "7999.00", now)

	// exactly 80%: included
	mustCreateBudget(transport.ID, "100.00")
	seedEntry(t, db, user.ID, account.ID, transport.ID, models.TypeExpense, "80.00", now)

	// exceeded: included and ranked first
	mustCreateBudget(housing.ID, "100.00")
	seedEntry(t, db, user.ID, account.ID, housing.ID, models.TypeExpense, "125.00", now)

	// barely touched: excluded
	mustCreateBudget(shopping.ID, "100.00")
	seedEntry(t, db, user.ID, account.ID, shopping.ID, models.TypeExpense, "5.00", now)

	alerts, err := svc.BudgetAlerts(user.ID)
	if err != nil {
		t.Fatalf("BudgetAlerts() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}
	if alerts[0].CategoryName != "Housing" || !alerts[0].Exceeded {
		t.Errorf("alerts[0] = %+v, want exceeded Housing", alerts[0])
	}
	if alerts[1].CategoryName != "Transport" {
		t.Errorf("alerts[1] = %q, want Transport", alerts[1].CategoryName)
	}
	if !alerts[1].PercentUsed.Equal(mustDecimal(t, "80")) {
		t.Errorf("transport percentUsed = %s, want 80", alerts[1].PercentUsed)
	}
}
