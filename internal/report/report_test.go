package report

import (
	"bytes"
	"testing"
	"time"

	"feeportal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func sampleTransaction() models.OrderStatus {
	return models.OrderStatus{
		OrderID:           "ORD-1",
		OrderAmount:       decimal.RequireFromString("1500.50"),
		TransactionAmount: decimal.RequireFromString("1500.50"),
		Status:            "SUCCESS",
		PaymentMode:       "UPI",
		PaymentDetails:    "UPI - ok",
		BankReference:     "BR1",
		PaymentMessage:    "ok",
		PaymentTime:       time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
		StudentInfo:       models.StudentInfo{Name: "Meera", Email: "meera@example.com"},
	}
}

func TestWriteTransactionsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsXLSX(&buf, []models.OrderStatus{sampleTransaction()}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[TransactionsSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Order ID", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "ORD-1", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "Meera", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "SUCCESS", sheet.Rows[1].Cells[5].Value)
}

func TestWriteTransactionsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsXLSX(&buf, nil))
	assert.NotZero(t, buf.Len())
}

func TestWriteReceiptPDF(t *testing.T) {
	tx := sampleTransaction()
	tx.ErrorMessage = "none"
	var buf bytes.Buffer
	err := WriteReceiptPDF(&buf, &tx, &models.School{SchoolName: "Green Valley", Address: "India", Phone: "+91 1"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
