package service

import (
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, balance string, allowNegative bool) models.Account {
	t.Helper()
	account := models.Account{
		UserID:         userID,
		Name:           "Checking",
		Balance:        mustDecimal(t, balance),
		OpeningBalance: mustDecimal(t, balance),
		AllowNegative:  allowNegative,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func seedCategory(t *testing.T, db *gorm.DB, userID *uint, name, typ string) models.Category {
	t.Helper()
	category := models.Category{
		UserID: userID,
		Name:   name,
		Type:   typ,
		Active: true,
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

// checkInvariant asserts the cached balance equals the recomputed opening
// balance plus signed sum of the account's live entries. Comparison is at
// cent precision, the resolution the ledger accepts amounts in.
func checkInvariant(t *testing.T, db *gorm.DB, accountID uint) {
	t.Helper()

	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	derived, err := RecomputeBalance(db, accountID)
	if err != nil {
		t.Fatalf("recompute balance: %v", err)
	}
	if !account.Balance.Round(2).Equal(derived.Round(2)) {
		t.Fatalf("balance invariant broken: cached %s, derived %s", account.Balance, derived)
	}
}

func expectBalance(t *testing.T, db *gorm.DB, accountID uint, want string) {
	t.Helper()

	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if !account.Balance.Round(2).Equal(mustDecimal(t, want)) {
		t.Fatalf("balance = %s, want %s", account.Balance, want)
	}
}

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}

// monthsBack returns noon on the first day of the month n months before the
// current one, safely inside that month's window regardless of today's day
// of month.
func monthsBack(n int) time.Time {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location())
	return first.AddDate(0, -n, 0)
}
