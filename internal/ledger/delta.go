package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dzkrii/fintrack/internal/models"
)

// Effect returns the signed balance change each wallet receives when a
// transaction is applied:
//
//	INCOME    +amount on the source wallet
//	EXPENSE   -amount on the source wallet
//	TRANSFER  -amount on the source wallet, +amount on the destination
func Effect(txType string, amount decimal.Decimal, walletID string, toWalletID *string) map[string]decimal.Decimal {
	effects := make(map[string]decimal.Decimal, 2)
	switch txType {
	case models.TypeIncome:
		effects[walletID] = amount
	case models.TypeExpense:
		effects[walletID] = amount.Neg()
	case models.TypeTransfer:
		effects[walletID] = amount.Neg()
		if toWalletID != nil {
			effects[*toWalletID] = amount
		}
	}
	return effects
}

// ComputeDelta returns the net balance change per wallet needed to move the
// ledger from oldTx to newTx: the old effect reversed plus the new effect
// applied. Create passes oldTx = nil, delete passes newTx = nil, update
// passes both. The two sides are computed independently; their wallets may
// not overlap at all. Wallets whose changes cancel exactly are omitted.
func ComputeDelta(oldTx, newTx *models.Transaction) map[string]decimal.Decimal {
	delta := make(map[string]decimal.Decimal, 4)
	if oldTx != nil {
		for id, d := range Effect(oldTx.Type, oldTx.Amount, oldTx.WalletID, oldTx.ToWalletID) {
			delta[id] = delta[id].Sub(d)
		}
	}
	if newTx != nil {
		for id, d := range Effect(newTx.Type, newTx.Amount, newTx.WalletID, newTx.ToWalletID) {
			delta[id] = delta[id].Add(d)
		}
	}
	for id, d := range delta {
		if d.IsZero() {
			delete(delta, id)
		}
	}
	return delta
}
