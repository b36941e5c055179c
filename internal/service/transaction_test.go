package service

import (
	"testing"
	"time"

	"fintrack/internal/models"
)

func TestCreateIncome_AdjustsBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", false)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	svc := NewTransactionService(db)

	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID:  account.ID,
		CategoryID: salary.ID,
		Type:       models.TypeIncome,
		Amount:     mustDecimal(t, "1250.50"),
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.Category.Name != "Salary" {
		t.Errorf("entry category = %q, want Salary", entry.Category.Name)
	}

	expectBalance(t, db, account.ID, "1250.50")
	checkInvariant(t, db, account.ID)
}

func TestCreateExpense_InsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	_, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID:  account.ID,
		CategoryID: food.ID,
		Type:       models.TypeExpense,
		Amount:     mustDecimal(t, "150.00"),
		OccurredAt: time.Now(),
	})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("Create() error = %v, want BadRequest", err)
	}

	// nothing committed: no entry, balance unchanged
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction count = %d, want 0", count)
	}
	expectBalance(t, db, account.ID, "100.00")
}

func TestCreateExpense_AllowNegative(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "50.00", true)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	_, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID:  account.ID,
		CategoryID: food.ID,
		Type:       models.TypeExpense,
		Amount:     mustDecimal(t, "80.00"),
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	expectBalance(t, db, account.ID, "-30.00")
	checkInvariant(t, db, account.ID)
}

func TestCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	account := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	inactive := seedCategory(t, db, nil, "Old", models.TypeExpense)
	db.Model(&models.Category{}).Where("id = ?", inactive.ID).Update("active", false)
	otherCat := seedCategory(t, db, &other.ID, "Private", models.TypeExpense)
	svc := NewTransactionService(db)

	base := CreateTransactionInput{
		AccountID:  account.ID,
		CategoryID: food.ID,
		Type:       models.TypeExpense,
		Amount:     mustDecimal(t, "10.00"),
		OccurredAt: time.Now(),
	}

	cases := []struct {
		name   string
		mutate func(in *CreateTransactionInput)
		want   Kind
	}{
		{"missing account", func(in *CreateTransactionInput) { in.AccountID = 9999 }, KindNotFound},
		{"missing category", func(in *CreateTransactionInput) { in.CategoryID = 9999 }, KindNotFound},
		{"foreign category", func(in *CreateTransactionInput) { in.CategoryID = otherCat.ID }, KindForbidden},
		{"inactive category", func(in *CreateTransactionInput) { in.CategoryID = inactive.ID }, KindBadRequest},
		{"type mismatch", func(in *CreateTransactionInput) { in.CategoryID = salary.ID }, KindBadRequest},
		{"zero amount", func(in *CreateTransactionInput) { in.Amount = mustDecimal(t, "0") }, KindBadRequest},
		{"negative amount", func(in *CreateTransactionInput) { in.Amount = mustDecimal(t, "-5") }, KindBadRequest},
		{"future date", func(in *CreateTransactionInput) { in.OccurredAt = time.Now().AddDate(0, 0, 2) }, KindBadRequest},
		{"bad type", func(in *CreateTransactionInput) { in.Type = "transfer" }, KindBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := svc.Create(user.ID, in)
			if !IsKind(err, tc.want) {
				t.Errorf("Create() error = %v, want kind %d", err, tc.want)
			}
		})
	}

	// validation failures never move the balance
	expectBalance(t, db, account.ID, "100.00")
}

func TestCreate_ForeignAccountForbidden(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	otherAccount := seedAccount(t, db, other.ID, "500.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	_, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID:  otherAccount.ID,
		CategoryID: food.ID,
		Type:       models.TypeExpense,
		Amount:     mustDecimal(t, "10.00"),
		OccurredAt: time.Now(),
	})
	if !IsKind(err, KindForbidden) {
		t.Fatalf("Create() error = %v, want Forbidden", err)
	}
	expectBalance(t, db, otherAccount.ID, "500.00")
}

// The scenario from the design discussion: reject, spend, amend, delete.
func TestLedgerScenario_BalanceLockstep(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	// 150 expense on a 100 balance is rejected outright
	_, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: food.ID,
		Type: models.TypeExpense, Amount: mustDecimal(t, "150.00"), OccurredAt: time.Now(),
	})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("oversized expense error = %v, want BadRequest", err)
	}
	expectBalance(t, db, account.ID, "100.00")

	// 60 expense succeeds
	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: food.ID,
		Type: models.TypeExpense, Amount: mustDecimal(t, "60.00"), OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("expense error = %v", err)
	}
	expectBalance(t, db, account.ID, "40.00")
	checkInvariant(t, db, account.ID)

	// amend it down to 10
	amount := mustDecimal(t, "10.00")
	if _, err := svc.Update(user.ID, entry.ID, TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("update error = %v", err)
	}
	expectBalance(t, db, account.ID, "90.00")
	checkInvariant(t, db, account.ID)

	// delete restores the starting balance
	if err := svc.Delete(user.ID, entry.ID); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	expectBalance(t, db, account.ID, "100.00")
	checkInvariant(t, db, account.ID)
}

func TestUpdate_TypeFlip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: salary.ID,
		Type: models.TypeIncome, Amount: mustDecimal(t, "30.00"), OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	expectBalance(t, db, account.ID, "30.00")

	// flip income 30 into expense 30: net swing of -60
	typ := models.TypeExpense
	if _, err := svc.Update(user.ID, entry.ID, TransactionPatch{Type: &typ, CategoryID: &food.ID}); err != nil {
		t.Fatalf("update error = %v", err)
	}
	expectBalance(t, db, account.ID, "-30.00")
	checkInvariant(t, db, account.ID)
}

func TestUpdate_MoveBetweenAccounts(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	first := seedAccount(t, db, user.ID, "100.00", false)
	second := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: first.ID, CategoryID: food.ID,
		Type: models.TypeExpense, Amount: mustDecimal(t, "25.00"), OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	expectBalance(t, db, first.ID, "75.00")

	// moving the entry undoes it on the first account and applies it on the second
	if _, err := svc.Update(user.ID, entry.ID, TransactionPatch{AccountID: &second.ID}); err != nil {
		t.Fatalf("update error = %v", err)
	}
	expectBalance(t, db, first.ID, "100.00")
	expectBalance(t, db, second.ID, "75.00")
	checkInvariant(t, db, first.ID)
	checkInvariant(t, db, second.ID)
}

func TestUpdate_OwnershipAndMissing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	account := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: food.ID,
		Type: models.TypeExpense, Amount: mustDecimal(t, "5.00"), OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create error = %v", err)
	}

	amount := mustDecimal(t, "7.00")
	if _, err := svc.Update(other.ID, entry.ID, TransactionPatch{Amount: &amount}); !IsKind(err, KindForbidden) {
		t.Errorf("foreign update error = %v, want Forbidden", err)
	}
	if _, err := svc.Update(user.ID, 9999, TransactionPatch{Amount: &amount}); !IsKind(err, KindNotFound) {
		t.Errorf("missing update error = %v, want NotFound", err)
	}

	// failed updates leave the balance alone
	expectBalance(t, db, account.ID, "95.00")
}

func TestDelete_SecondDeleteNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "100.00", false)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	entry, err := svc.Create(user.ID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: food.ID,
		Type: models.TypeExpense, Amount: mustDecimal(t, "40.00"), OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	expectBalance(t, db, account.ID, "60.00")

	if err := svc.Delete(user.ID, entry.ID); err != nil {
		t.Fatalf("first delete error = %v", err)
	}
	expectBalance(t, db, account.ID, "100.00")

	if err := svc.Delete(user.ID, entry.ID); !IsKind(err, KindNotFound) {
		t.Fatalf("second delete error = %v, want NotFound", err)
	}
	expectBalance(t, db, account.ID, "100.00")
}

func TestBalanceInvariant_RandomishSequence(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	steps := []struct {
		typ    string
		amount string
	}{
		{models.TypeIncome, "100.10"},
		{models.TypeExpense, "33.33"},
		{models.TypeIncome, "0.01"},
		{models.TypeExpense, "66.78"},
		{models.TypeIncome, "250.00"},
	}

	var ids []uint
	for _, step := range steps {
		cat := salary
		if step.typ == models.TypeExpense {
			cat = food
		}
		entry, err := svc.Create(user.ID, CreateTransactionInput{
			AccountID: account.ID, CategoryID: cat.ID,
			Type: step.typ, Amount: mustDecimal(t, step.amount), OccurredAt: daysAgo(1),
		})
		if err != nil {
			t.Fatalf("create %s %s error = %v", step.typ, step.amount, err)
		}
		ids = append(ids, entry.ID)
		checkInvariant(t, db, account.ID)
	}

	// amend a middle entry, then delete another, re-checking each time
	amount := mustDecimal(t, "12.34")
	if _, err := svc.Update(user.ID, ids[1], TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("update error = %v", err)
	}
	checkInvariant(t, db, account.ID)

	if err := svc.Delete(user.ID, ids[3]); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	checkInvariant(t, db, account.ID)

	expectBalance(t, db, account.ID, "337.77")
}

func TestList_FiltersAndPaging(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	account := seedAccount(t, db, user.ID, "0", true)
	salary := seedCategory(t, db, nil, "Salary", models.TypeIncome)
	food := seedCategory(t, db, nil, "Food", models.TypeExpense)
	svc := NewTransactionService(db)

	for i := 0; i < 5; i++ {
		cat, typ := food, models.TypeExpense
		if i%2 == 0 {
			cat, typ = salary, models.TypeIncome
		}
		_, err := svc.Create(user.ID, CreateTransactionInput{
			AccountID: account.ID, CategoryID: cat.ID,
			Type: typ, Amount: mustDecimal(t, "10.00"), OccurredAt: daysAgo(i),
		})
		if err != nil {
			t.Fatalf("create error = %v", err)
		}
	}

	page, err := svc.List(user.ID, TransactionFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 5 || len(page.Data) != 2 || page.TotalPages != 3 {
		t.Errorf("page = total %d, len %d, pages %d; want 5, 2, 3", page.Total, len(page.Data), page.TotalPages)
	}
	// newest first
	if !page.Data[0].OccurredAt.After(page.Data[1].OccurredAt) {
		t.Errorf("entries not ordered by occurred_at descending")
	}

	expensesOnly, err := svc.List(user.ID, TransactionFilter{Type: models.TypeExpense}, 1, 10)
	if err != nil {
		t.Fatalf("List(expense) error = %v", err)
	}
	if expensesOnly.Total != 2 {
		t.Errorf("expense total = %d, want 2", expensesOnly.Total)
	}

	byCategory, err := svc.List(user.ID, TransactionFilter{CategoryID: salary.ID}, 1, 10)
	if err != nil {
		t.Fatalf("List(category) error = %v", err)
	}
	if byCategory.Total != 3 {
		t.Errorf("salary total = %d, want 3", byCategory.Total)
	}
}
