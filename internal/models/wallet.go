package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet is an account holding a balance. The balance column is written only
// by direct wallet edits and by the ledger engine as a side effect of
// transaction mutations, so it always equals the signed sum of all
// transaction effects on this wallet.
type Wallet struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:64;not null"`
	Icon      string          `gorm:"size:32"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
