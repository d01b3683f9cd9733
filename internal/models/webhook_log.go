package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   string         `gorm:"size:64;index" json:"orderId"`
	Gateway   string         `gorm:"size:32;not null" json:"gateway"`
	Payload   datatypes.JSON `json:"payload"`
	Status    string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Message   string         `gorm:"size:512" json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
