package models

import "time"

type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     string    `gorm:"uniqueIndex;size:64;not null" json:"Order_id"`
	SchoolID    uint      `gorm:"not null;index" json:"school_id"`
	TrusteeID   string    `gorm:"size:128;not null" json:"trustee_id"`
	StudentID   uint      `gorm:"not null;index" json:"student_info"`
	GatewayName string    `gorm:"size:64;not null;index" json:"gateway_name"`
	Types       string    `gorm:"size:64;not null" json:"types"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Student *User `gorm:"foreignKey:StudentID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
