package handler

import (
	"net/http"
	"time"

	"github.com/dzkrii/fintrack/internal/ledger"
	"github.com/dzkrii/fintrack/internal/models"
	"github.com/dzkrii/fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler serves the transaction endpoints. All mutations go
// through the ledger engine so wallet balances stay consistent with the
// transaction table.
type TransactionHandler struct {
	DB     *gorm.DB
	Engine *ledger.Engine
}

func NewTransactionHandler(db *gorm.DB, engine *ledger.Engine) *TransactionHandler {
	return &TransactionHandler{DB: db, Engine: engine}
}

type transactionReq struct {
	Amount      string `json:"amount" binding:"required"` // decimal string
	Description string `json:"description" binding:"max=255"`
	Date        string `json:"date"`
	Type        string `json:"type" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	WalletID    string `json:"wallet_id" binding:"required"`
	ToWalletID  string `json:"to_wallet_id"`
	CategoryID  string `json:"category_id"`
}

// toInput converts the wire request into an engine input. Amount and date
// errors surface as ValidationError so the caller sees a 400.
func (req *transactionReq) toInput() (*ledger.Input, error) {
	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		return nil, &ledger.ValidationError{Msg: err.Error()}
	}

	var date time.Time
	if req.Date != "" {
		date, err = util.ParseDate(req.Date)
		if err != nil {
			return nil, &ledger.ValidationError{Msg: err.Error()}
		}
	}

	return &ledger.Input{
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		Type:        req.Type,
		WalletID:    req.WalletID,
		ToWalletID:  req.ToWalletID,
		CategoryID:  req.CategoryID,
	}, nil
}

type walletRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
	Type string `json:"type"`
}

type transactionResp struct {
	ID          string       `json:"id"`
	Amount      string       `json:"amount"`
	Description *string      `json:"description"`
	Date        time.Time    `json:"date"`
	Type        string       `json:"type"`
	WalletID    string       `json:"wallet_id"`
	ToWalletID  *string      `json:"to_wallet_id"`
	CategoryID  *string      `json:"category_id"`
	Wallet      walletRef    `json:"wallet"`
	ToWallet    *walletRef   `json:"to_wallet,omitempty"`
	Category    *categoryRef `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func toTransactionResp(t *models.Transaction) transactionResp {
	resp := transactionResp{
		ID:          t.ID,
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date,
		Type:        t.Type,
		WalletID:    t.WalletID,
		ToWalletID:  t.ToWalletID,
		CategoryID:  t.CategoryID,
		Wallet:      walletRef{ID: t.Wallet.ID, Name: t.Wallet.Name, Icon: t.Wallet.Icon},
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ToWallet != nil {
		resp.ToWallet = &walletRef{ID: t.ToWallet.ID, Name: t.ToWallet.Name, Icon: t.ToWallet.Icon}
	}
	if t.Category != nil {
		resp.Category = &categoryRef{ID: t.Category.ID, Name: t.Category.Name, Icon: t.Category.Icon, Type: t.Category.Type}
	}
	return resp
}

// ListTransactions returns the caller's transactions, newest first, with
// optional type / wallet / date-range filters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)

	switch txType := c.Query("type"); txType {
	case models.TypeIncome, models.TypeExpense, models.TypeTransfer:
		q = q.Where("type = ?", txType)
	}

	// a wallet filter matches the wallet on either side of a transfer
	if walletID := c.Query("wallet_id"); walletID != "" {
		q = q.Where("wallet_id = ? OR to_wallet_id = ?", walletID, walletID)
	}

	if startStr := c.Query("start"); startStr != "" {
		start, err := util.ParseDate(startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date, expected YYYY-MM-DD")
			return
		}
		q = q.Where("date >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := util.ParseDate(endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date, expected YYYY-MM-DD")
			return
		}
		// inclusive end: strictly before the next day
		q = q.Where("date < ?", end.Add(24*time.Hour))
	}

	var transactions []models.Transaction
	if err := q.Preload("Wallet").Preload("ToWallet").Preload("Category").
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	items := make([]transactionResp, 0, len(transactions))
	for i := range transactions {
		items = append(items, toTransactionResp(&transactions[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
	})
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount, type and wallet_id are required")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	row, err := h.Engine.Create(user.ID, in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": toTransactionResp(row),
	})
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount, type and wallet_id are required")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	row, err := h.Engine.Update(user.ID, c.Param("id"), in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": toTransactionResp(row),
	})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Engine.Delete(user.ID, c.Param("id")); err != nil {
		writeLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "transaction deleted",
	})
}
