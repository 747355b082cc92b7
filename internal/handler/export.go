package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dzkrii/fintrack/internal/models"
	"github.com/dzkrii/fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves transaction exports.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{"Date", "Type", "Wallet", "To Wallet", "Category", "Amount", "Description"}

func (h *ExportHandler) loadTransactions(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := h.DB.Preload("Wallet").Preload("ToWallet").Preload("Category").
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&transactions).Error
	return transactions, err
}

func exportRow(t *models.Transaction) []string {
	toWallet := ""
	if t.ToWallet != nil {
		toWallet = t.ToWallet.Name
	}
	category := ""
	if t.Category != nil {
		category = t.Category.Name
	}
	description := ""
	if t.Description != nil {
		description = *t.Description
	}
	return []string{
		t.Date.Format("2006-01-02"),
		t.Type,
		t.Wallet.Name,
		toWallet,
		category,
		t.Amount.String(),
		description,
	}
}

// writeCSV renders the header and one row per transaction, reporting the
// first failed write so a broken stream is not mistaken for success.
func writeCSV(w io.Writer, transactions []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for i := range transactions {
		if err := writer.Write(exportRow(&transactions[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV streams all of the caller's transactions as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	transactions, err := h.loadTransactions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	if err := writeCSV(c.Writer, transactions); err != nil {
		// headers are already on the wire; record the failure for the log
		_ = c.Error(err)
	}
}

// ExportXLSX writes all of the caller's transactions as an xlsx workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	transactions, err := h.loadTransactions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i := range transactions {
		for col, val := range exportRow(&transactions[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
		return
	}
}
