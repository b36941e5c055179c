package service

import (
	"fmt"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The account balance is only ever written through the two functions below,
// always as a single atomic increment inside the same gorm transaction as
// the ledger row it mirrors. The write path never recomputes the balance
// from the ledger; Recompute exists for audits and tests.

// applyDelta adjusts an account balance by delta.
func applyDelta(tx *gorm.DB, accountID uint, delta decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("apply balance delta: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("account", "account %d not found", accountID)
	}
	return nil
}

// applyGuardedDebit subtracts amount from the balance, failing atomically
// when the account forbids negative balances and the funds are not there.
// The sufficiency predicate lives inside the UPDATE itself so two concurrent
// debits can never both pass on a stale read of the balance. Callers must
// have verified the account exists; a zero row count here means the guard
// rejected the debit.
func applyGuardedDebit(tx *gorm.DB, accountID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND (allow_negative OR balance >= ?)", accountID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("apply guarded debit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return badRequest("amount", "insufficient balance")
	}
	return nil
}

// applyEffect applies a ledger entry's contribution to its account:
// income credits unconditionally, expense debits through the guarded path.
func applyEffect(tx *gorm.DB, accountID uint, entryType string, amount decimal.Decimal) error {
	if entryType == models.TypeIncome {
		return applyDelta(tx, accountID, amount)
	}
	return applyGuardedDebit(tx, accountID, amount)
}

// reverseEffect undoes a previously applied contribution using the entry's
// original account, type and amount.
func reverseEffect(tx *gorm.DB, accountID uint, entryType string, amount decimal.Decimal) error {
	if entryType == models.TypeIncome {
		return applyDelta(tx, accountID, amount.Neg())
	}
	return applyDelta(tx, accountID, amount)
}

// RecomputeBalance derives an account's balance from its opening balance
// plus its live ledger entries. Consistency audits and tests only; never
// part of a command.
func RecomputeBalance(db *gorm.DB, accountID uint) (decimal.Decimal, error) {
	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load account: %w", err)
	}
	var entries []models.Transaction
	if err := db.Where("account_id = ?", accountID).Find(&entries).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load ledger entries: %w", err)
	}
	sum := account.OpeningBalance
	for i := range entries {
		sum = sum.Add(entries[i].SignedAmount())
	}
	return sum, nil
}
