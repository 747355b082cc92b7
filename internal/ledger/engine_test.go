package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dzkrii/fintrack/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// pin a single connection so every query sees the same in-memory db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Category{},
		&models.Transaction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

const testUserID uint = 1

func newWallet(t *testing.T, db *gorm.DB, name, balance string) *models.Wallet {
	t.Helper()
	w := &models.Wallet{UserID: testUserID, Name: name, Balance: dec(balance)}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("create wallet %s: %v", name, err)
	}
	return w
}

func newCategory(t *testing.T, db *gorm.DB, name, catType string) *models.Category {
	t.Helper()
	cat := &models.Category{UserID: testUserID, Name: name, Type: catType}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return cat
}

func balanceOf(t *testing.T, db *gorm.DB, walletID string) decimal.Decimal {
	t.Helper()
	var w models.Wallet
	if err := db.Where("id = ?", walletID).First(&w).Error; err != nil {
		t.Fatalf("load wallet %s: %v", walletID, err)
	}
	return w.Balance
}

func wantBalance(t *testing.T, db *gorm.DB, walletID, want string) {
	t.Helper()
	got := balanceOf(t, db, walletID)
	if !got.Equal(dec(want)) {
		t.Errorf("wallet %s balance = %s, want %s", walletID, got, want)
	}
}

// income 1000, expense 300, edit the expense to 500, delete it
func TestEngine_IncomeExpenseFlow(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "0")

	if _, err := e.Create(testUserID, &Input{Amount: dec("1000"), Type: models.TypeIncome, WalletID: w1.ID}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	wantBalance(t, db, w1.ID, "1000")

	expense, err := e.Create(testUserID, &Input{Amount: dec("300"), Type: models.TypeExpense, WalletID: w1.ID})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	wantBalance(t, db, w1.ID, "700")

	if _, err := e.Update(testUserID, expense.ID, &Input{Amount: dec("500"), Type: models.TypeExpense, WalletID: w1.ID}); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	wantBalance(t, db, w1.ID, "500")

	if err := e.Delete(testUserID, expense.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	wantBalance(t, db, w1.ID, "1000")
}

// transfer 400 from W1 to W2, bump it to 600, then delete it
func TestEngine_TransferFlow(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "BCA", "1000")
	w2 := newWallet(t, db, "GoPay", "0")

	transfer, err := e.Create(testUserID, &Input{
		Amount: dec("400"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w2.ID,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	wantBalance(t, db, w1.ID, "600")
	wantBalance(t, db, w2.ID, "400")

	if transfer.CategoryID != nil {
		t.Errorf("transfer carries a category id: %v", *transfer.CategoryID)
	}

	if _, err := e.Update(testUserID, transfer.ID, &Input{
		Amount: dec("600"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w2.ID,
	}); err != nil {
		t.Fatalf("update transfer: %v", err)
	}
	wantBalance(t, db, w1.ID, "400")
	wantBalance(t, db, w2.ID, "600")

	if err := e.Delete(testUserID, transfer.ID); err != nil {
		t.Fatalf("delete transfer: %v", err)
	}
	wantBalance(t, db, w1.ID, "1000")
	wantBalance(t, db, w2.ID, "0")
}

func TestEngine_TransferSameWalletRejected(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "500")

	_, err := e.Create(testUserID, &Input{
		Amount: dec("100"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w1.ID,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("same-wallet transfer error = %v, want ValidationError", err)
	}
	wantBalance(t, db, w1.ID, "500")

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction rows after rejected create = %d, want 0", count)
	}
}

func TestEngine_NonPositiveAmountRejected(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "500")

	for _, amount := range []string{"0", "-1", "-99.99"} {
		_, err := e.Create(testUserID, &Input{Amount: dec(amount), Type: models.TypeIncome, WalletID: w1.ID})

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("amount %s error = %v, want ValidationError", amount, err)
		}
	}
	wantBalance(t, db, w1.ID, "500")
}

func TestEngine_UnknownTypeRejected(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "0")

	_, err := e.Create(testUserID, &Input{Amount: dec("10"), Type: "REFUND", WalletID: w1.ID})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("unknown type error = %v, want ValidationError", err)
	}
}

func TestEngine_CategoryTypeMismatchRejected(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "0")
	salary := newCategory(t, db, "Salary", models.TypeIncome)

	_, err := e.Create(testUserID, &Input{
		Amount: dec("50"), Type: models.TypeExpense, WalletID: w1.ID, CategoryID: salary.ID,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("mismatched category error = %v, want ValidationError", err)
	}
	wantBalance(t, db, w1.ID, "0")
}

func TestEngine_ForeignWalletNotFound(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)

	// wallet owned by another user is invisible to the caller
	other := &models.Wallet{UserID: 99, Name: "Other", Balance: dec("100")}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	_, err := e.Create(testUserID, &Input{Amount: dec("10"), Type: models.TypeIncome, WalletID: other.ID})

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("foreign wallet error = %v, want NotFoundError", err)
	}
	wantBalance(t, db, other.ID, "100")
}

func TestEngine_UpdateMissingTransaction(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "0")

	_, err := e.Update(testUserID, "no-such-id", &Input{Amount: dec("10"), Type: models.TypeIncome, WalletID: w1.ID})

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("update missing error = %v, want NotFoundError", err)
	}
}

func TestEngine_DeleteMissingTransaction(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)

	err := e.Delete(testUserID, "no-such-id")

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("delete missing error = %v, want NotFoundError", err)
	}
}

// editing a transaction with identical values leaves every balance unchanged
func TestEngine_NoopUpdateKeepsBalances(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "BCA", "1000")
	w2 := newWallet(t, db, "GoPay", "0")

	transfer, err := e.Create(testUserID, &Input{
		Amount: dec("250"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w2.ID,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}

	if _, err := e.Update(testUserID, transfer.ID, &Input{
		Amount: dec("250"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w2.ID,
	}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	wantBalance(t, db, w1.ID, "750")
	wantBalance(t, db, w2.ID, "250")
}

// moving an expense from wallet A to wallet B leaves no residue on A
func TestEngine_CrossWalletMove(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	wA := newWallet(t, db, "A", "1000")
	wB := newWallet(t, db, "B", "1000")

	expense, err := e.Create(testUserID, &Input{Amount: dec("200"), Type: models.TypeExpense, WalletID: wA.ID})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	wantBalance(t, db, wA.ID, "800")

	if _, err := e.Update(testUserID, expense.ID, &Input{
		Amount: dec("200"), Type: models.TypeExpense, WalletID: wB.ID,
	}); err != nil {
		t.Fatalf("move expense: %v", err)
	}
	wantBalance(t, db, wA.ID, "1000")
	wantBalance(t, db, wB.ID, "800")
}

// changing an EXPENSE into a TRANSFER re-derives balances for both wallets
func TestEngine_TypeChangeExpenseToTransfer(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "BCA", "1000")
	w2 := newWallet(t, db, "GoPay", "0")

	expense, err := e.Create(testUserID, &Input{Amount: dec("300"), Type: models.TypeExpense, WalletID: w1.ID})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	wantBalance(t, db, w1.ID, "700")

	updated, err := e.Update(testUserID, expense.ID, &Input{
		Amount: dec("500"), Type: models.TypeTransfer, WalletID: w1.ID, ToWalletID: w2.ID,
	})
	if err != nil {
		t.Fatalf("change to transfer: %v", err)
	}
	wantBalance(t, db, w1.ID, "500")
	wantBalance(t, db, w2.ID, "500")

	if updated.ToWalletID == nil || *updated.ToWalletID != w2.ID {
		t.Errorf("updated transfer destination = %v, want %s", updated.ToWalletID, w2.ID)
	}
	if updated.CategoryID != nil {
		t.Errorf("transfer still carries a category id: %v", *updated.CategoryID)
	}
}

// after any sequence of operations, every wallet balance equals its opening
// balance plus the signed sum of all surviving transaction effects
func TestEngine_InvariantAfterMixedOperations(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)

	opening := map[string]string{}
	w1 := newWallet(t, db, "Cash", "100")
	w2 := newWallet(t, db, "Bank", "2500")
	w3 := newWallet(t, db, "EWallet", "0")
	opening[w1.ID] = "100"
	opening[w2.ID] = "2500"
	opening[w3.ID] = "0"

	salary := newCategory(t, db, "Salary", models.TypeIncome)
	food := newCategory(t, db, "Food", models.TypeExpense)

	income, err := e.Create(testUserID, &Input{Amount: dec("5000"), Type: models.TypeIncome, WalletID: w2.ID, CategoryID: salary.ID})
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	lunch, err := e.Create(testUserID, &Input{Amount: dec("35.75"), Type: models.TypeExpense, WalletID: w1.ID, CategoryID: food.ID})
	if err != nil {
		t.Fatalf("expense: %v", err)
	}
	transfer, err := e.Create(testUserID, &Input{Amount: dec("1200"), Type: models.TypeTransfer, WalletID: w2.ID, ToWalletID: w3.ID})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// shuffle things around: move the lunch to the e-wallet, retarget the
	// transfer, bump the income
	if _, err := e.Update(testUserID, lunch.ID, &Input{Amount: dec("42.25"), Type: models.TypeExpense, WalletID: w3.ID, CategoryID: food.ID}); err != nil {
		t.Fatalf("move expense: %v", err)
	}
	if _, err := e.Update(testUserID, transfer.ID, &Input{Amount: dec("800"), Type: models.TypeTransfer, WalletID: w2.ID, ToWalletID: w1.ID}); err != nil {
		t.Fatalf("retarget transfer: %v", err)
	}
	if _, err := e.Update(testUserID, income.ID, &Input{Amount: dec("5500"), Type: models.TypeIncome, WalletID: w2.ID, CategoryID: salary.ID}); err != nil {
		t.Fatalf("bump income: %v", err)
	}
	if err := e.Delete(testUserID, lunch.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}

	// recompute each wallet from the surviving ledger rows
	var rows []models.Transaction
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	derived := map[string]decimal.Decimal{}
	for i := range rows {
		for id, d := range ComputeDelta(nil, &rows[i]) {
			derived[id] = derived[id].Add(d)
		}
	}

	for id, open := range opening {
		want := dec(open).Add(derived[id])
		got := balanceOf(t, db, id)
		if !got.Equal(want) {
			t.Errorf("wallet %s balance = %s, want %s (opening %s + effects %s)",
				id, got, want, open, derived[id])
		}
	}
}

// exact decimals must survive the round trip through the store untouched
func TestEngine_DecimalPrecision(t *testing.T) {
	db := newTestDB(t)
	e := NewEngine(db)
	w1 := newWallet(t, db, "Cash", "0.10")

	// classic float trap: 0.1 + 0.2
	if _, err := e.Create(testUserID, &Input{Amount: dec("0.20"), Type: models.TypeIncome, WalletID: w1.ID}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	wantBalance(t, db, w1.ID, "0.30")

	for i := 0; i < 10; i++ {
		if _, err := e.Create(testUserID, &Input{Amount: dec("0.01"), Type: models.TypeExpense, WalletID: w1.ID}); err != nil {
			t.Fatalf("create expense %d: %v", i, err)
		}
	}
	wantBalance(t, db, w1.ID, "0.20")
}
