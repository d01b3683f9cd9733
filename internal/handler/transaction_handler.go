package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"feeportal/internal/middleware"
	"feeportal/internal/report"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type TransactionHandler struct {
	svc *service.TransactionService
	log *zap.Logger
}

func NewTransactionHandler(svc *service.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, log: log}
}

type TransactionQuery struct {
	PageQuery
	Status string `form:"status"`
}

func (q TransactionQuery) toService() service.TransactionQuery {
	return service.TransactionQuery{Search: q.Search, Status: q.Status, Page: q.Page, Limit: q.Limit}
}

func (h *TransactionHandler) List(c *gin.Context) {
	var q TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	page, err := h.svc.List(middleware.GetUserID(c), q.toService())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Transactions fetched successfully", page)
}

func (h *TransactionHandler) Summary(c *gin.Context) {
	totals, err := h.svc.Summary(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Transaction summary", totals)
}

// Export streams the filtered transactions as an XLSX workbook.
func (h *TransactionHandler) Export(c *gin.Context) {
	var q TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	rows, err := h.svc.Export(middleware.GetUserID(c), q.toService())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteTransactionsXLSX(&buf, rows); err != nil {
		respondError(c, h.log, err)
		return
	}
	name := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func (h *TransactionHandler) Receipt(c *gin.Context) {
	tx, school, err := h.svc.Receipt(middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteReceiptPDF(&buf, tx, school); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=receipt_"+tx.OrderID+".pdf")
	c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
}
