package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePaymentWebhook = `{
  "type": "PAYMENT_SUCCESS_WEBHOOK",
  "data": {
    "order": {"order_id": "ORD-42", "order_amount": 500.00, "order_currency": "INR"},
    "payment": {
      "cf_payment_id": 975679534,
      "payment_status": "SUCCESS",
      "payment_amount": 500.00,
      "payment_message": "Simulated response message",
      "payment_time": "2024-01-15T12:00:00+05:30",
      "bank_reference": "1234567890",
      "payment_group": "credit_card",
      "payment_method": {"card": {"card_number": "XXXXXXXXXXXX1111", "card_network": "visa"}}
    }
  }
}`

func TestParseWebhook(t *testing.T) {
	ev, err := ParseWebhook([]byte(samplePaymentWebhook))
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", ev.OrderID)
	assert.Equal(t, "ORD-42", ev.Payment.OrderID)
	assert.Equal(t, "SUCCESS", ev.Payment.PaymentStatus)
	assert.True(t, ev.Payment.PaymentAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "VISA ending with 1111", ev.Payment.Details())
}

func TestParseWebhookMissingOrder(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"data":{"payment":{}}}`))
	assert.ErrorIs(t, err, ErrMissingOrderID)

	_, err = ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(samplePaymentWebhook)
	sig := SignWebhook("whsec", "1700000000", body)

	assert.True(t, VerifyWebhookSignature("whsec", "1700000000", body, sig))
	assert.False(t, VerifyWebhookSignature("whsec", "1700000001", body, sig))
	assert.False(t, VerifyWebhookSignature("other", "1700000000", body, sig))
	assert.False(t, VerifyWebhookSignature("whsec", "1700000000", body, ""))
}
