package handler

import (
	"errors"
	"io"
	"net/http"

	"feeportal/internal/service"
	"feeportal/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerWebhookTimestamp = "x-webhook-timestamp"
	headerWebhookSignature = "x-webhook-signature"

	maxWebhookBody = 1 << 20
)

type WebhookHandler struct {
	svc     *service.WebhookService
	secret  string
	require bool
	log     *zap.Logger
}

// NewWebhookHandler verifies signatures when secret is set. With requireSignature
// and no secret every callback is refused.
func NewWebhookHandler(svc *service.WebhookService, secret string, requireSignature bool, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, require: requireSignature, log: log}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret == "" && h.require {
		h.log.Error("[webhook] rejected callback, no webhook secret configured")
		respond(c, http.StatusUnauthorized, "invalid signature", nil)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond(c, http.StatusRequestEntityTooLarge, "payload too large", nil)
			return
		}
		respond(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if h.secret != "" {
		ts := c.GetHeader(headerWebhookTimestamp)
		sig := c.GetHeader(headerWebhookSignature)
		if !payment.VerifyWebhookSignature(h.secret, ts, body, sig) {
			h.log.Warn("[webhook] signature mismatch", zap.String("ip", c.ClientIP()))
			respond(c, http.StatusUnauthorized, "invalid signature", nil)
			return
		}
	}
	status, err := h.svc.Process(body)
	if err != nil {
		h.log.Error("[webhook] could not record callback", zap.Error(err))
		respond(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.log.Info("[webhook] callback handled", zap.String("status", status))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
