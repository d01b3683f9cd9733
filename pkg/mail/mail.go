package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	TemplateEmailOTP          = "email-otp"
	TemplateForgotPassword    = "forgot-password"
	TemplatePasswordUpdate    = "password-update"
	TemplateAccountDetails    = "account-details"
	TemplatePaymentSuccessful = "payment-successful"
	TemplatePaymentFailed     = "payment-failed"
)

// Sender delivers a rendered HTML message.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends through an SMTP relay with gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender only logs messages. Used when no SMTP host is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(to, subject, htmlBody string) error {
	s.log.Info("[mail] delivery disabled, message dropped",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bytes", len(htmlBody)))
	return nil
}

// Mailer renders named templates and hands them to a Sender.
type Mailer struct {
	sender    Sender
	templates *template.Template
}

func NewMailer(sender Sender) (*Mailer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{sender: sender, templates: t}, nil
}

// Send renders templates/<name>.html with data and delivers it.
func (m *Mailer) Send(to, subject, name string, data any) error {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return m.sender.Send(to, subject, buf.String())
}
