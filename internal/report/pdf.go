package report

import (
	"fmt"
	"io"

	"feeportal/internal/domain"
	"feeportal/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// WriteReceiptPDF renders a one-page payment receipt.
func WriteReceiptPDF(w io.Writer, tx *models.OrderStatus, school *models.School) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, school.SchoolName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, school.Address)
	pdf.Ln(6)
	pdf.Cell(100, 8, "Phone: "+school.Phone)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Paid By:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, tx.StudentInfo.Name)
	pdf.Ln(6)
	pdf.Cell(100, 8, tx.StudentInfo.Email)
	pdf.Ln(10)

	lines := [][2]string{
		{"Order ID", tx.OrderID},
		{"Status", tx.Status},
		{"Order Amount", fmt.Sprintf("%s %s", domain.CurrencyINR, tx.OrderAmount.StringFixed(2))},
		{"Amount Paid", fmt.Sprintf("%s %s", domain.CurrencyINR, tx.TransactionAmount.StringFixed(2))},
		{"Payment Mode", tx.PaymentMode},
		{"Payment Details", tx.PaymentDetails},
		{"Bank Reference", tx.BankReference},
		{"Payment Time", tx.PaymentTime.Format("2006-01-02 15:04:05")},
	}
	for _, l := range lines {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(55, 8, l[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(125, 8, l[1], "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	if tx.ErrorMessage != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 11)
		pdf.MultiCell(180, 6, "Note: "+tx.ErrorMessage, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(180, 6, "This is a computer generated receipt.")

	return pdf.Output(w)
}
