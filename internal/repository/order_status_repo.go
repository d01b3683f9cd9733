package repository

import (
	"time"

	"feeportal/internal/domain"
	"feeportal/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxFilter selects transactions for the dashboard. Zero SchoolID means all schools.
type TxFilter struct {
	SchoolID uint
	Search   string
	Status   string
	Page     int
	Limit    int
}

type OrderStatusRepository struct {
	db *gorm.DB
}

func NewOrderStatusRepository(db *gorm.DB) *OrderStatusRepository {
	return &OrderStatusRepository{db: db}
}

func (r *OrderStatusRepository) Create(s *models.OrderStatus) error {
	return r.db.Create(s).Error
}

func (r *OrderStatusRepository) GetByOrderID(orderID string) (*models.OrderStatus, error) {
	var s models.OrderStatus
	if err := r.db.Where("order_id = ?", orderID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *OrderStatusRepository) filtered(f TxFilter) *gorm.DB {
	q := r.db.Model(&models.OrderStatus{})
	if f.SchoolID != 0 {
		q = q.Where("school_id = ?", f.SchoolID)
	}
	if f.Status != "" && f.Status != "All" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("LOWER(student_info_name) LIKE ? ESCAPE '!' OR LOWER(payment_message) LIKE ? ESCAPE '!' OR LOWER(bank_reference) LIKE ? ESCAPE '!'", p, p, p)
	}
	return q
}

func (r *OrderStatusRepository) List(f TxFilter) ([]models.OrderStatus, int64, error) {
	q := r.filtered(f)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OrderStatus
	err := q.Order("payment_time DESC").Scopes(paginate(f.Page, f.Limit)).Find(&rows).Error
	return rows, total, err
}

// ListAll ignores pagination and returns at most max rows.
func (r *OrderStatusRepository) ListAll(f TxFilter, max int) ([]models.OrderStatus, error) {
	var rows []models.OrderStatus
	err := r.filtered(f).Order("payment_time DESC").Limit(max).Find(&rows).Error
	return rows, err
}

func (r *OrderStatusRepository) Summary(schoolID uint) ([]models.StatusTotal, error) {
	var out []models.StatusTotal
	q := r.db.Model(&models.OrderStatus{})
	if schoolID != 0 {
		q = q.Where("school_id = ?", schoolID)
	}
	err := q.Select("status, COUNT(*) AS count, COALESCE(SUM(order_amount), 0) AS amount").
		Group("status").
		Order("status").
		Scan(&out).Error
	return out, err
}

// ListStalePending returns PENDING rows whose session opened before cutoff, oldest first.
func (r *OrderStatusRepository) ListStalePending(cutoff time.Time, limit int) ([]models.OrderStatus, error) {
	var rows []models.OrderStatus
	err := r.db.Where("status = ? AND payment_time < ?", domain.TxStatusPending, cutoff).
		Order("payment_time ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ApplyTransition persists s's session and outcome fields if the stored version still matches,
// and credits the student in the same transaction when credit is positive.
func (r *OrderStatusRepository) ApplyTransition(s *models.OrderStatus, credit decimal.Decimal) error {
	prev := s.Version
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderStatus{}).
			Where("id = ? AND version = ?", s.ID, prev).
			Updates(map[string]any{
				"cf_order_id":        s.CFOrderID,
				"order_amount":       s.OrderAmount,
				"transaction_amount": s.TransactionAmount,
				"payment_mode":       s.PaymentMode,
				"payment_details":    s.PaymentDetails,
				"bank_reference":     s.BankReference,
				"payment_message":    s.PaymentMessage,
				"status":             s.Status,
				"error_message":      s.ErrorMessage,
				"payment_time":       s.PaymentTime,
				"student_info_name":  s.StudentInfo.Name,
				"student_info_email": s.StudentInfo.Email,
				"student_info_phone": s.StudentInfo.Phone,
				"version":            prev + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		if !credit.IsPositive() {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", s.StudentInfo.StudentID).
			Updates(map[string]any{
				"payment_clear": gorm.Expr("payment_clear + ?", credit),
				"months":        gorm.Expr("CASE WHEN months > 0 THEN months - 1 ELSE 0 END"),
				"version":       gorm.Expr("version + 1"),
			}).Error
	})
	if err != nil {
		return err
	}
	s.Version = prev + 1
	return nil
}
