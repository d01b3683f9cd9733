package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *CashfreeProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p := NewCashfreeProvider("app-id", "app-secret", "SANDBOX", "", nil)
	p.BaseURL = srv.URL
	return p
}

func TestNewCashfreeProviderStage(t *testing.T) {
	assert.Equal(t, CashfreeSandboxURL, NewCashfreeProvider("a", "b", "SANDBOX", "", nil).BaseURL)
	assert.Equal(t, CashfreeProductionURL, NewCashfreeProvider("a", "b", "PROD", "", nil).BaseURL)
}

func TestCashfreeCreateOrder(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "app-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2022-01-01", r.Header.Get("x-api-version"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cf_order_id":2149460581,"order_id":"ORD-1","order_status":"ACTIVE","payment_link":"https://payments-test.cashfree.com/order/#abc","order_token":"tok"}`))
	})

	resp, err := p.CreateOrder(context.Background(), OrderRequest{
		OrderID:   "ORD-1",
		Amount:    decimal.RequireFromString("1500.5"),
		Customer:  Customer{ID: "7", Name: "Asha", Email: "asha@example.com", Phone: "9876543210"},
		ReturnURL: "http://front/payment_status/ORD-1",
		NotifyURL: "http://back/api/webhook",
	})
	require.NoError(t, err)
	assert.Equal(t, "2149460581", resp.CFOrderID.String())
	assert.Equal(t, "ORD-1", resp.OrderID)
	assert.Contains(t, string(resp.Raw), `"order_token":"tok"`)

	assert.Equal(t, "ORD-1", got["order_id"])
	assert.Equal(t, 1500.5, got["order_amount"])
	assert.Equal(t, "INR", got["order_currency"])
	cust := got["customer_details"].(map[string]any)
	assert.Equal(t, "+919876543210", cust["customer_phone"])
	meta := got["order_meta"].(map[string]any)
	assert.Equal(t, "http://back/api/webhook", meta["notify_url"])
}

func TestCashfreeCreateOrderGatewayError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"order_id already exists","code":"order_already_exists"}`))
	})

	_, err := p.CreateOrder(context.Background(), OrderRequest{OrderID: "ORD-1", Amount: decimal.NewFromInt(1)})
	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode)
	assert.Equal(t, "order_id already exists", gerr.Error())
}

func TestCashfreeFetchPayments(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/orders/ORD-9/payments", r.URL.Path)
		_, _ = w.Write([]byte(`[{"cf_payment_id":12376123,"order_id":"ORD-9","payment_status":"SUCCESS","payment_message":"Transaction successful","payment_amount":250.00,"payment_group":"upi","bank_reference":"1234567890","payment_time":"2022-01-21T10:32:08+05:30"}]`))
	})

	attempts, err := p.FetchPayments(context.Background(), "ORD-9")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	a := attempts[0]
	assert.Equal(t, "12376123", a.CFPaymentID.String())
	assert.True(t, a.PaymentAmount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "UPI", a.Mode())
	assert.Equal(t, "UPI - Transaction successful", a.Details())
	assert.Equal(t, 2022, a.PaidAt().Year())
}

func TestCashfreeFetchPaymentsEmpty(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	attempts, err := p.FetchPayments(context.Background(), "ORD-0")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestPaymentAttemptCardDetails(t *testing.T) {
	a := PaymentAttempt{
		PaymentGroup:  "card",
		PaymentMethod: json.RawMessage(`{"card":{"card_number":"470613XXXXXX2123","card_network":"visa"}}`),
	}
	assert.Equal(t, "VISA ending with 2123", a.Details())

	flat := PaymentAttempt{PaymentMode: "CARD", CardBrand: "mastercard", CardLast4: "4444"}
	assert.Equal(t, "MASTERCARD ending with 4444", flat.Details())

	bare := PaymentAttempt{PaymentMode: "card"}
	assert.Equal(t, "CARD ending with ****", bare.Details())
}

func TestPaymentAttemptErrorMessage(t *testing.T) {
	a := PaymentAttempt{ErrorDetails: json.RawMessage(`{"error_code":"TRANSACTION_DECLINED","error_description":"issuer bank declined"}`)}
	assert.Equal(t, "issuer bank declined", a.ErrorMessage())
	assert.Empty(t, (&PaymentAttempt{}).ErrorMessage())
}
