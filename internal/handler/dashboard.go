package handler

import (
	"net/http"
	"time"

	"github.com/dzkrii/fintrack/internal/models"
	"github.com/dzkrii/fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardHandler serves read-side aggregation for the dashboard.
type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// periodTotals are the per-type sums and the transfer count within a range.
type periodTotals struct {
	Income        decimal.Decimal
	Expense       decimal.Decimal
	TransferTotal decimal.Decimal
	TransferCount int64
}

// sumPeriod aggregates [start, end) for one user. Sums are computed in Go
// decimal arithmetic rather than SQL so SQLite never coerces the amounts to
// floats.
func (h *DashboardHandler) sumPeriod(userID uint, start, end time.Time) (periodTotals, error) {
	var rows []models.Transaction
	err := h.DB.Select("type", "amount").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Find(&rows).Error
	if err != nil {
		return periodTotals{}, err
	}

	var totals periodTotals
	for i := range rows {
		switch rows[i].Type {
		case models.TypeIncome:
			totals.Income = totals.Income.Add(rows[i].Amount)
		case models.TypeExpense:
			totals.Expense = totals.Expense.Add(rows[i].Amount)
		case models.TypeTransfer:
			totals.TransferTotal = totals.TransferTotal.Add(rows[i].Amount)
			totals.TransferCount++
		}
	}
	return totals, nil
}

// trendPercent is the percentage change versus the prior period:
// (current - previous) / previous * 100, with previous = 0 reported as
// +100% when current > 0 and 0% otherwise.
func trendPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

// GetSummary returns total balance, per-type sums for the requested range
// (default: last 30 days) and trends versus the prior period of equal
// length.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -29)
	end := today.AddDate(0, 0, 1)

	if startStr := c.Query("start"); startStr != "" {
		t, err := util.ParseDate(startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date, expected YYYY-MM-DD")
			return
		}
		start = t
	}
	if endStr := c.Query("end"); endStr != "" {
		t, err := util.ParseDate(endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date, expected YYYY-MM-DD")
			return
		}
		// inclusive end date
		end = t.Add(24 * time.Hour)
	}
	if !end.After(start) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end date must not be before start date")
		return
	}

	// total balance across all owned wallets, summed in Go decimals
	var wallets []models.Wallet
	if err := h.DB.Select("balance").Where("user_id = ?", user.ID).Find(&wallets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load wallets")
		return
	}
	totalBalance := decimal.Zero
	for i := range wallets {
		totalBalance = totalBalance.Add(wallets[i].Balance)
	}

	current, err := h.sumPeriod(user.ID, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to aggregate transactions")
		return
	}

	// prior period of equal length, ending where the current one starts
	prevStart := start.Add(-end.Sub(start))
	previous, err := h.sumPeriod(user.ID, prevStart, start)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to aggregate transactions")
		return
	}

	util.Success(c, util.Response{
		"total_balance":  totalBalance.String(),
		"income":         current.Income.String(),
		"expense":        current.Expense.String(),
		"transfer_total": current.TransferTotal.String(),
		"transfer_count": current.TransferCount,
		"trends": gin.H{
			"income":  trendPercent(current.Income, previous.Income).String(),
			"expense": trendPercent(current.Expense, previous.Expense).String(),
		},
		"period": gin.H{
			"start": start.Format("2006-01-02"),
			"end":   end.AddDate(0, 0, -1).Format("2006-01-02"),
		},
	})
}
