package models

import (
	"time"

	"feeportal/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"size:255;not null" json:"name"`
	Email                string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash         string          `gorm:"size:255" json:"-"`
	Role                 string          `gorm:"size:20;not null;index" json:"role"` // admin | teacher | student
	SchoolID             *uint           `gorm:"index" json:"schoolId"`
	CreateID             *uint           `gorm:"index" json:"createId,omitempty"` // admin that created this account
	TotalFees            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalFees"`
	Months               int             `gorm:"not null;default:0" json:"months"`
	MonthPayment         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"monthPayment"`
	PaymentClear         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paymentClear"`
	IsVerified           bool            `gorm:"not null;default:false" json:"isVerified"`
	VerifyOTP            string          `gorm:"size:6" json:"-"`
	ResetPasswordToken   *string         `gorm:"uniqueIndex;size:64" json:"-"`
	ResetPasswordExpires *time.Time      `json:"-"`
	Version              int             `gorm:"not null;default:1" json:"-"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == domain.RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == domain.RoleStudent }

// InSchool reports whether the user is affiliated with the given school.
func (u *User) InSchool(schoolID uint) bool {
	return u.SchoolID != nil && *u.SchoolID == schoolID
}

// CreatedBy reports whether the account was provisioned by the given admin.
func (u *User) CreatedBy(adminID uint) bool {
	return u.CreateID != nil && *u.CreateID == adminID
}

// BeforeCreate starts optimistic locking at version 1.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}
