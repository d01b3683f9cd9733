package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrMissingOrderID = errors.New("webhook payload missing order_id")

// WebhookEvent is the subset of a Cashfree payment webhook we act on.
type WebhookEvent struct {
	Type    string
	OrderID string
	Payment PaymentAttempt
}

// ParseWebhook decodes {"type":..., "data":{"order":{"order_id":...},"payment":{...}}}.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var raw struct {
		Type string `json:"type"`
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
			Payment PaymentAttempt `json:"payment"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw.Data.Order.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	ev := &WebhookEvent{
		Type:    raw.Type,
		OrderID: raw.Data.Order.OrderID,
		Payment: raw.Data.Payment,
	}
	if ev.Payment.OrderID == "" {
		ev.Payment.OrderID = ev.OrderID
	}
	return ev, nil
}

// SignWebhook computes base64(HMAC-SHA256(secret, timestamp+body)).
func SignWebhook(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyWebhookSignature(secret, timestamp string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignWebhook(secret, timestamp, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
