package service

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService validates and applies ledger commands. Every mutating
// command runs as one gorm transaction so the ledger row and the balance
// adjustment commit or roll back together; a concurrent reader never sees
// one without the other.
type TransactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// CreateTransactionInput carries a validated-at-the-boundary create command.
type CreateTransactionInput struct {
	AccountID  uint
	CategoryID uint
	Type       string
	Amount     decimal.Decimal
	OccurredAt time.Time
	Note       string
}

// TransactionPatch holds the fields an update command wants to change.
// Nil means "keep the current value".
type TransactionPatch struct {
	AccountID  *uint
	CategoryID *uint
	Type       *string
	Amount     *decimal.Decimal
	OccurredAt *time.Time
	Note       *string
}

// TransactionFilter narrows List results. Zero values mean "no filter".
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	AccountID  uint
	CategoryID uint
	Type       string
}

// TransactionPage is one page of ledger entries plus paging metadata.
type TransactionPage struct {
	Data       []models.Transaction
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ---------- shared validation ----------

func validateType(t string) error {
	if t != models.TypeIncome && t != models.TypeExpense {
		return badRequest("type", "type must be income or expense, got %q", t)
	}
	return nil
}

func validateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return badRequest("amount", "amount must be positive, got %s", d)
	}
	return nil
}

// Entries may carry any time today or earlier; the comparison is at day
// granularity so "later today" still counts as today.
func validateOccurredAt(t time.Time) error {
	if t.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		return badRequest("occurred_at", "date must not be in the future")
	}
	return nil
}

// loadOwnedAccount fetches an account and asserts the caller owns it.
func loadOwnedAccount(tx *gorm.DB, userID, accountID uint) (*models.Account, error) {
	var acct models.Account
	if err := tx.First(&acct, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("account", "account %d not found", accountID)
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct.UserID != userID {
		return nil, forbidden("account", "account belongs to another user")
	}
	return &acct, nil
}

// loadUsableCategory fetches a category and asserts the caller may book
// against it: owned by the caller or a shared default, active, and of the
// wanted type.
func loadUsableCategory(tx *gorm.DB, userID, categoryID uint, wantType string) (*models.Category, error) {
	var cat models.Category
	if err := tx.First(&cat, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category", "category %d not found", categoryID)
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	if !cat.Shared() && *cat.UserID != userID {
		return nil, forbidden("category", "category belongs to another user")
	}
	if !cat.Active {
		return nil, badRequest("category", "category %q is inactive", cat.Name)
	}
	if cat.Type != wantType {
		return nil, badRequest("type", "transaction type %q does not match category type %q", wantType, cat.Type)
	}
	return &cat, nil
}

// ---------- commands ----------

// Create validates and records a new ledger entry, adjusting the account
// balance in the same atomic unit. For expenses on accounts that forbid a
// negative balance, the sufficiency check happens inside the balance UPDATE
// itself, not as a prior read.
func (s *TransactionService) Create(userID uint, in CreateTransactionInput) (*models.Transaction, error) {
	if err := validateType(in.Type); err != nil {
		return nil, err
	}
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validateOccurredAt(in.OccurredAt); err != nil {
		return nil, err
	}

	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedAccount(tx, userID, in.AccountID); err != nil {
			return err
		}
		if _, err := loadUsableCategory(tx, userID, in.CategoryID, in.Type); err != nil {
			return err
		}

		created = models.Transaction{
			UserID:     userID,
			AccountID:  in.AccountID,
			CategoryID: in.CategoryID,
			Type:       in.Type,
			Amount:     in.Amount,
			OccurredAt: in.OccurredAt,
			Note:       in.Note,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		return applyEffect(tx, in.AccountID, in.Type, in.Amount)
	})
	if err != nil {
		return nil, err
	}

	return s.loadEnriched(created.ID)
}

// Update amends a ledger entry. The old contribution is reversed on the
// original account using the original amount and type, the field changes
// are persisted, and the resolved final contribution is applied, all inside
// one atomic unit. Any combination of changed fields reduces to this
// undo-then-redo, so sequential updates never double count.
func (s *TransactionService) Update(userID, id uint, patch TransactionPatch) (*models.Transaction, error) {
	if patch.Type != nil {
		if err := validateType(*patch.Type); err != nil {
			return nil, err
		}
	}
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}
	if patch.OccurredAt != nil {
		if err := validateOccurredAt(*patch.OccurredAt); err != nil {
			return nil, err
		}
	}

	var updated models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.Transaction
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("transaction", "transaction %d not found", id)
			}
			return fmt.Errorf("load transaction: %w", err)
		}
		if entry.UserID != userID {
			return forbidden("transaction", "transaction belongs to another user")
		}

		oldAccountID, oldType, oldAmount := entry.AccountID, entry.Type, entry.Amount

		final := entry
		if patch.AccountID != nil {
			final.AccountID = *patch.AccountID
		}
		if patch.CategoryID != nil {
			final.CategoryID = *patch.CategoryID
		}
		if patch.Type != nil {
			final.Type = *patch.Type
		}
		if patch.Amount != nil {
			final.Amount = *patch.Amount
		}
		if patch.OccurredAt != nil {
			final.OccurredAt = *patch.OccurredAt
		}
		if patch.Note != nil {
			final.Note = *patch.Note
		}

		if final.AccountID != oldAccountID {
			if _, err := loadOwnedAccount(tx, userID, final.AccountID); err != nil {
				return err
			}
		}
		// the category must match the final type, whether the category, the
		// type, or both changed
		if patch.CategoryID != nil || patch.Type != nil {
			if _, err := loadUsableCategory(tx, userID, final.CategoryID, final.Type); err != nil {
				return err
			}
		}

		// undo the old contribution first so the re-apply below starts from
		// a balance that no longer contains this entry
		if err := reverseEffect(tx, oldAccountID, oldType, oldAmount); err != nil {
			return err
		}

		if err := tx.Save(&final).Error; err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}

		if err := applyEffect(tx, final.AccountID, final.Type, final.Amount); err != nil {
			return err
		}

		updated = final
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadEnriched(updated.ID)
}

// Delete removes a ledger entry and reverses its balance effect atomically.
// Deleting an already-deleted entry reports NotFound.
func (s *TransactionService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.Transaction
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("transaction", "transaction %d not found", id)
			}
			return fmt.Errorf("load transaction: %w", err)
		}
		if entry.UserID != userID {
			return forbidden("transaction", "transaction belongs to another user")
		}

		if err := tx.Delete(&models.Transaction{}, entry.ID).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}

		return reverseEffect(tx, entry.AccountID, entry.Type, entry.Amount)
	})
}

// List returns a page of the caller's ledger entries, newest first.
func (s *TransactionService) List(userID uint, f TransactionFilter, page, limit int) (*TransactionPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if f.From != nil {
		base = base.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		base = base.Where("occurred_at < ?", *f.To)
	}
	if f.AccountID != 0 {
		base = base.Where("account_id = ?", f.AccountID)
	}
	if f.CategoryID != 0 {
		base = base.Where("category_id = ?", f.CategoryID)
	}
	if f.Type != "" {
		base = base.Where("type = ?", f.Type)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	var entries []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Preload("Account").
		Preload("Category").
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &TransactionPage{
		Data:       entries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// loadEnriched reloads an entry with its account and category summaries.
func (s *TransactionService) loadEnriched(id uint) (*models.Transaction, error) {
	var entry models.Transaction
	if err := s.db.Preload("Account").Preload("Category").First(&entry, id).Error; err != nil {
		return nil, fmt.Errorf("reload transaction: %w", err)
	}
	return &entry, nil
}
