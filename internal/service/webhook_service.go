package service

import (
	"encoding/json"
	"errors"

	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WebhookService struct {
	logs       WebhookLogStore
	statuses   OrderStatusStore
	reconciler *Reconciler
	log        *zap.Logger
}

func NewWebhookService(logs WebhookLogStore, statuses OrderStatusStore, reconciler *Reconciler, log *zap.Logger) *WebhookService {
	return &WebhookService{logs: logs, statuses: statuses, reconciler: reconciler, log: log}
}

// Process records a gateway callback and applies it to the matching transaction.
// It returns the final webhook log status.
func (s *WebhookService) Process(body []byte) (string, error) {
	payload := datatypes.JSON(body)
	if !json.Valid(body) {
		quoted, _ := json.Marshal(string(body))
		payload = datatypes.JSON(quoted)
	}
	entry := &models.WebhookLog{
		Gateway: domain.GatewayCashfree,
		Payload: payload,
		Status:  domain.WebhookPending,
	}

	ev, perr := payment.ParseWebhook(body)
	if perr == nil {
		entry.OrderID = ev.OrderID
	}
	if err := s.logs.Create(entry); err != nil {
		return "", err
	}
	if perr != nil {
		return s.finalize(entry, domain.WebhookFailed, "invalid payload: "+perr.Error())
	}

	row, err := s.statuses.GetByOrderID(ev.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.finalize(entry, domain.WebhookIgnored, "unknown order")
		}
		return s.finalize(entry, domain.WebhookFailed, err.Error())
	}

	outcome, err := s.reconciler.Apply(row, &ev.Payment)
	if err != nil {
		s.log.Error("[webhook] apply failed", zap.String("order_id", ev.OrderID), zap.Error(err))
		return s.finalize(entry, domain.WebhookFailed, err.Error())
	}
	switch outcome {
	case OutcomeDuplicate:
		return s.finalize(entry, domain.WebhookDuplicate, "transaction already "+row.Status)
	case OutcomeUnchanged:
		return s.finalize(entry, domain.WebhookProcessed, "status "+ev.Payment.PaymentStatus+" left transaction pending")
	default:
		return s.finalize(entry, domain.WebhookProcessed, "transaction "+row.Status)
	}
}

func (s *WebhookService) finalize(entry *models.WebhookLog, status, message string) (string, error) {
	if err := s.logs.Finalize(entry.ID, status, message); err != nil {
		s.log.Warn("[webhook] could not finalize log", zap.Uint("log_id", entry.ID), zap.Error(err))
	}
	return status, nil
}
