package mail

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountDetails struct {
	Name           string
	Email          string
	Password       string
	Role           string
	SchoolName     string
	CurrentSession time.Time
	SessionEndDate time.Time
}

type PaymentReceipt struct {
	Name          string
	OrderID       string
	Amount        decimal.Decimal
	PaymentMode   string
	BankReference string
	Message       string
	PaidAt        time.Time
}

func (m *Mailer) SendEmailOTP(name, email, otp string) error {
	return m.Send(email, "Verify your email", TemplateEmailOTP, map[string]any{
		"Name": name,
		"OTP":  otp,
	})
}

func (m *Mailer) SendForgotPassword(email, resetLink string) error {
	return m.Send(email, "Reset your password", TemplateForgotPassword, map[string]any{
		"ResetLink": resetLink,
	})
}

func (m *Mailer) SendPasswordUpdated(email string) error {
	return m.Send(email, "Your password was changed", TemplatePasswordUpdate, map[string]any{
		"Email": email,
	})
}

func (m *Mailer) SendAccountDetails(d AccountDetails) error {
	return m.Send(d.Email, "Your account details", TemplateAccountDetails, d)
}

func (m *Mailer) SendPaymentSuccessful(email string, r PaymentReceipt) error {
	return m.Send(email, "Payment successful", TemplatePaymentSuccessful, r)
}

func (m *Mailer) SendPaymentFailed(email string, r PaymentReceipt) error {
	return m.Send(email, "Payment failed", TemplatePaymentFailed, r)
}
