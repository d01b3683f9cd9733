package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StudentInfo is the payer snapshot taken when the payment session is opened.
type StudentInfo struct {
	StudentID uint   `gorm:"index" json:"student_id"`
	Name      string `gorm:"size:255" json:"name"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:16" json:"phone"`
}

// OrderStatus is one payment attempt against the gateway.
type OrderStatus struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CollectID         uint            `gorm:"not null;index" json:"collect_id"`
	OrderID           string          `gorm:"uniqueIndex;size:64;not null" json:"order_id"`
	CFOrderID         string          `gorm:"size:64" json:"cf_order_id"`
	OrderAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"order_amount"`
	TransactionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"transaction_amount"`
	PaymentMode       string          `gorm:"size:64" json:"payment_mode"`
	PaymentDetails    string          `gorm:"size:255" json:"payment_details"`
	BankReference     string          `gorm:"size:128" json:"bank_reference"`
	PaymentMessage    string          `gorm:"size:512" json:"payment_message"`
	Status            string          `gorm:"size:20;not null;index" json:"status"`
	ErrorMessage      string          `gorm:"size:512" json:"error_message"`
	PaymentTime       time.Time       `gorm:"index" json:"payment_time"`
	StudentInfo       StudentInfo     `gorm:"embedded;embeddedPrefix:student_info_" json:"student_info"`
	SchoolID          uint            `gorm:"not null;index" json:"school_id"`
	Version           int             `gorm:"not null;default:1" json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (OrderStatus) TableName() string {
	return "order_statuses"
}

// StatusTotal aggregates transactions per status.
type StatusTotal struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BeforeCreate starts optimistic locking at version 1.
func (s *OrderStatus) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
