package repository

import (
	"feeportal/internal/models"

	"gorm.io/gorm"
)

type WebhookLogRepository struct {
	db *gorm.DB
}

func NewWebhookLogRepository(db *gorm.DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

func (r *WebhookLogRepository) Create(l *models.WebhookLog) error {
	return r.db.Create(l).Error
}

// Finalize records the processing outcome of a delivery.
func (r *WebhookLogRepository) Finalize(id uint, status, message string) error {
	return r.db.Model(&models.WebhookLog{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "message": message}).Error
}
