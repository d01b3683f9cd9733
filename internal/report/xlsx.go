package report

import (
	"io"

	"feeportal/internal/models"

	"github.com/tealeg/xlsx"
)

const TransactionsSheet = "Transactions"

var transactionHeaders = []string{
	"Order ID", "Student", "Email", "Order Amount", "Paid Amount",
	"Status", "Payment Mode", "Payment Details", "Bank Reference", "Message", "Payment Time",
}

// WriteTransactionsXLSX renders rows as a single-sheet workbook.
func WriteTransactionsXLSX(w io.Writer, rows []models.OrderStatus) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(TransactionsSheet)
	if err != nil {
		return err
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	header := sheet.AddRow()
	for _, h := range transactionHeaders {
		cell := header.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.OrderID)
		row.AddCell().SetString(r.StudentInfo.Name)
		row.AddCell().SetString(r.StudentInfo.Email)
		row.AddCell().SetFloat(r.OrderAmount.InexactFloat64())
		row.AddCell().SetFloat(r.TransactionAmount.InexactFloat64())
		row.AddCell().SetString(r.Status)
		row.AddCell().SetString(r.PaymentMode)
		row.AddCell().SetString(r.PaymentDetails)
		row.AddCell().SetString(r.BankReference)
		row.AddCell().SetString(r.PaymentMessage)
		row.AddCell().SetString(r.PaymentTime.Format("2006-01-02 15:04"))
	}
	return file.Write(w)
}
