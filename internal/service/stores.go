package service

import (
	"time"

	"feeportal/internal/models"
	"feeportal/internal/repository"
	"feeportal/pkg/mail"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(u *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	Update(u *models.User) error
	Delete(id uint) error
	ListTeachers(creatorID uint, search string, page, limit int) ([]models.User, int64, error)
	ListStudents(schoolID uint, search string, page, limit int) ([]models.User, int64, error)
	StudentOptions(schoolID uint) ([]models.User, error)
}

type SchoolStore interface {
	GetByID(id uint) (*models.School, error)
	GetByAdminID(adminID uint) (*models.School, error)
	Update(s *models.School) error
	CreateForAdmin(s *models.School) error
}

type OrderStore interface {
	Create(o *models.Order) error
	GetByOrderID(orderID string) (*models.Order, error)
	List(schoolID uint, search, sort string, page, limit int) ([]models.Order, int64, error)
}

type OrderStatusStore interface {
	Create(s *models.OrderStatus) error
	GetByOrderID(orderID string) (*models.OrderStatus, error)
	List(f repository.TxFilter) ([]models.OrderStatus, int64, error)
	ListAll(f repository.TxFilter, max int) ([]models.OrderStatus, error)
	Summary(schoolID uint) ([]models.StatusTotal, error)
	ListStalePending(cutoff time.Time, limit int) ([]models.OrderStatus, error)
	ApplyTransition(s *models.OrderStatus, credit decimal.Decimal) error
}

type WebhookLogStore interface {
	Create(l *models.WebhookLog) error
	Finalize(id uint, status, message string) error
}

type Mailer interface {
	SendEmailOTP(name, email, otp string) error
	SendForgotPassword(email, resetLink string) error
	SendPasswordUpdated(email string) error
	SendAccountDetails(d mail.AccountDetails) error
	SendPaymentSuccessful(email string, r mail.PaymentReceipt) error
	SendPaymentFailed(email string, r mail.PaymentReceipt) error
}

// TransactionPublisher pushes transaction changes to live dashboards.
type TransactionPublisher interface {
	PublishTransaction(schoolID uint, s *models.OrderStatus)
}
