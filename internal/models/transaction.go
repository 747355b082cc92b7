package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TypeIncome   = "INCOME"
	TypeExpense  = "EXPENSE"
	TypeTransfer = "TRANSFER"
)

// Transaction is a single ledger record. ToWalletID is set only for
// transfers (and must differ from WalletID); CategoryID is set only for
// income/expense.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36"`
	UserID      uint            `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"` // always > 0, sign comes from Type
	Description *string         `gorm:"size:255"`
	Date        time.Time       `gorm:"index;not null"`
	Type        string          `gorm:"size:16;index;not null"` // INCOME / EXPENSE / TRANSFER
	WalletID    string          `gorm:"size:36;index;not null"`
	ToWalletID  *string         `gorm:"size:36;index"`
	CategoryID  *string         `gorm:"size:36;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Wallet   Wallet    `gorm:"foreignKey:WalletID"`
	ToWallet *Wallet   `gorm:"foreignKey:ToWalletID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
