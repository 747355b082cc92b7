package handler

import (
	"net/http"
	"strings"

	"github.com/dzkrii/fintrack/internal/ledger"
	"github.com/dzkrii/fintrack/internal/models"
	"github.com/dzkrii/fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletHandler serves wallet CRUD. Balance writes here are direct user
// edits; everything else that touches a balance goes through the ledger
// engine.
type WalletHandler struct {
	DB *gorm.DB
}

func NewWalletHandler(db *gorm.DB) *WalletHandler {
	return &WalletHandler{DB: db}
}

type walletReq struct {
	Name    string  `json:"name" binding:"required,max=64"`
	Icon    string  `json:"icon" binding:"max=32"`
	Balance *string `json:"balance"` // decimal string; nil keeps the stored value on update
}

type walletResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toWalletResp(w *models.Wallet) walletResp {
	return walletResp{
		ID:        w.ID,
		Name:      w.Name,
		Icon:      w.Icon,
		Balance:   w.Balance.String(),
		CreatedAt: w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: w.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *WalletHandler) ListWallets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var wallets []models.Wallet
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&wallets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load wallets")
		return
	}

	items := make([]walletResp, 0, len(wallets))
	for i := range wallets {
		items = append(items, toWalletResp(&wallets[i]))
	}

	util.Success(c, util.Response{
		"wallets": items,
	})
}

func (h *WalletHandler) CreateWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req walletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "wallet name is required")
		return
	}

	// opening balance defaults to zero
	balance := decimal.Zero
	if req.Balance != nil {
		var err error
		balance, err = util.ParseBalance(*req.Balance)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	wallet := models.Wallet{
		UserID:  user.ID,
		Name:    req.Name,
		Icon:    req.Icon,
		Balance: balance,
	}
	if err := h.DB.Create(&wallet).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create wallet")
		return
	}

	util.Success(c, util.Response{
		"wallet": toWalletResp(&wallet),
	})
}

func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var req walletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "wallet name is required")
		return
	}

	var wallet models.Wallet
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load wallet")
		}
		return
	}

	wallet.Name = req.Name
	wallet.Icon = req.Icon
	if req.Balance != nil {
		balance, err := util.ParseBalance(*req.Balance)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		wallet.Balance = balance
	}

	if err := h.DB.Save(&wallet).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save wallet")
		return
	}

	util.Success(c, util.Response{
		"wallet": toWalletResp(&wallet),
	})
}

// DeleteWallet refuses to delete a wallet that transactions still reference
// as source or destination; a dangling transaction could never contribute a
// correct effect to a missing wallet.
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var wallet models.Wallet
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load wallet")
		}
		return
	}

	var count int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("wallet_id = ? OR to_wallet_id = ?", id, id).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}
	if count > 0 {
		writeLedgerError(c, &ledger.ConflictError{Entity: "wallet", Count: count})
		return
	}

	if err := h.DB.Delete(&wallet).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete wallet")
		return
	}

	util.Success(c, util.Response{
		"message": "wallet deleted",
	})
}
