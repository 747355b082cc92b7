package ledger

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dzkrii/fintrack/internal/models"
)

// Engine keeps every wallet's balance equal to the signed sum of its
// transaction effects. Each mutation validates fully before writing, then
// performs the transaction-row write and the wallet balance updates in one
// store transaction.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// Input describes a transaction create or update. Amount must be a positive
// exact decimal; a zero Date means "now" on create and "keep the stored date"
// on update.
type Input struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Type        string
	WalletID    string
	ToWalletID  string
	CategoryID  string
}

// validate checks input shape and ownership of every referenced entity.
// Nothing is written; a nil return means the input is safe to apply.
func (e *Engine) validate(userID uint, in *Input) error {
	if !in.Amount.IsPositive() {
		return &ValidationError{Msg: "amount must be greater than 0"}
	}
	switch in.Type {
	case models.TypeIncome, models.TypeExpense, models.TypeTransfer:
	default:
		return &ValidationError{Msg: "invalid transaction type"}
	}
	if in.WalletID == "" {
		return &ValidationError{Msg: "wallet is required"}
	}

	var wallet models.Wallet
	if err := e.DB.Where("id = ? AND user_id = ?", in.WalletID, userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "wallet"}
		}
		return &StorageError{Err: err}
	}

	if in.Type == models.TypeTransfer {
		if in.ToWalletID == "" {
			return &ValidationError{Msg: "destination wallet is required for transfers"}
		}
		if in.ToWalletID == in.WalletID {
			return &ValidationError{Msg: "source and destination wallets must be different"}
		}
		var toWallet models.Wallet
		if err := e.DB.Where("id = ? AND user_id = ?", in.ToWalletID, userID).First(&toWallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "destination wallet"}
			}
			return &StorageError{Err: err}
		}
		return nil
	}

	if in.CategoryID != "" {
		var category models.Category
		if err := e.DB.Where("id = ? AND user_id = ?", in.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "category"}
			}
			return &StorageError{Err: err}
		}
		if category.Type != in.Type {
			return &ValidationError{Msg: "category type does not match transaction type"}
		}
	}
	return nil
}

// toModel builds the row a validated input describes. Transfers never carry
// a category and non-transfers never carry a destination wallet.
func toModel(userID uint, in *Input) *models.Transaction {
	row := &models.Transaction{
		UserID:   userID,
		Amount:   in.Amount,
		Date:     in.Date,
		Type:     in.Type,
		WalletID: in.WalletID,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		row.Description = &desc
	}
	if in.Type == models.TypeTransfer {
		to := in.ToWalletID
		row.ToWalletID = &to
	} else if in.CategoryID != "" {
		cat := in.CategoryID
		row.CategoryID = &cat
	}
	return row
}

// applyDelta adjusts each touched wallet inside tx. The current balance is
// read back inside the write transaction (SQLite serializes writers, so the
// read is stable) and the new value is computed in exact decimal arithmetic,
// never in store-side numeric expressions. Wallets are visited in a stable
// order so concurrent units touch them consistently.
func applyDelta(tx *gorm.DB, delta map[string]decimal.Decimal) error {
	ids := make([]string, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var wallet models.Wallet
		if err := tx.Where("id = ?", id).First(&wallet).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Wallet{}).Where("id = ?", id).
			Update("balance", wallet.Balance.Add(delta[id])).Error; err != nil {
			return err
		}
	}
	return nil
}

// load returns a transaction with its wallet/category display fields
// resolved.
func (e *Engine) load(userID uint, id string) (*models.Transaction, error) {
	var row models.Transaction
	err := e.DB.Preload("Wallet").Preload("ToWallet").Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "transaction"}
		}
		return nil, &StorageError{Err: err}
	}
	return &row, nil
}

// Create validates the input, then inserts the row and applies its balance
// effect as one atomic unit.
func (e *Engine) Create(userID uint, in *Input) (*models.Transaction, error) {
	if err := e.validate(userID, in); err != nil {
		return nil, err
	}

	row := toModel(userID, in)
	if row.Date.IsZero() {
		row.Date = time.Now()
	}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return applyDelta(tx, ComputeDelta(nil, row))
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return e.load(userID, row.ID)
}

// Update re-derives balances from the stored pre-mutation values: the old
// effect is reversed and the new effect applied, regardless of how type,
// amount or wallet references changed between the two versions.
func (e *Engine) Update(userID uint, id string, in *Input) (*models.Transaction, error) {
	// capture the old row before any write; the reversal must use these
	// values, not anything read mid-mutation
	var oldRow models.Transaction
	if err := e.DB.Where("id = ? AND user_id = ?", id, userID).First(&oldRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "transaction"}
		}
		return nil, &StorageError{Err: err}
	}

	if err := e.validate(userID, in); err != nil {
		return nil, err
	}

	newRow := toModel(userID, in)
	newRow.ID = oldRow.ID
	if newRow.Date.IsZero() {
		newRow.Date = oldRow.Date
	}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		// map form so cleared ToWalletID/CategoryID are written as NULL
		updates := map[string]interface{}{
			"amount":       newRow.Amount,
			"description":  newRow.Description,
			"date":         newRow.Date,
			"type":         newRow.Type,
			"wallet_id":    newRow.WalletID,
			"to_wallet_id": newRow.ToWalletID,
			"category_id":  newRow.CategoryID,
		}
		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", oldRow.ID).Updates(updates).Error; err != nil {
			return err
		}
		return applyDelta(tx, ComputeDelta(&oldRow, newRow))
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return e.load(userID, oldRow.ID)
}

// Delete reverses the transaction's balance effect and removes the row as
// one atomic unit.
func (e *Engine) Delete(userID uint, id string) error {
	var oldRow models.Transaction
	if err := e.DB.Where("id = ? AND user_id = ?", id, userID).First(&oldRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "transaction"}
		}
		return &StorageError{Err: err}
	}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyDelta(tx, ComputeDelta(&oldRow, nil)); err != nil {
			return err
		}
		return tx.Where("id = ?", oldRow.ID).Delete(&models.Transaction{}).Error
	})
	if err != nil {
		return &StorageError{Err: err}
	}
	return nil
}
