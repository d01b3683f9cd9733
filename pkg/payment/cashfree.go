package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	CashfreeSandboxURL    = "https://sandbox.cashfree.com"
	CashfreeProductionURL = "https://api.cashfree.com"
	CashfreeAPIVersion    = "2022-01-01"
)

// CashfreeProvider implements hosted checkout via Cashfree PG orders API.
type CashfreeProvider struct {
	BaseURL    string
	ClientID   string
	Secret     string
	APIVersion string
	client     *http.Client
	log        *zap.Logger
}

// NewCashfreeProvider picks the sandbox host when stage is "SANDBOX".
func NewCashfreeProvider(clientID, secret, stage, apiVersion string, log *zap.Logger) *CashfreeProvider {
	base := CashfreeProductionURL
	if stage == "SANDBOX" {
		base = CashfreeSandboxURL
	}
	if apiVersion == "" {
		apiVersion = CashfreeAPIVersion
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CashfreeProvider{
		BaseURL:    base,
		ClientID:   clientID,
		Secret:     secret,
		APIVersion: apiVersion,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (p *CashfreeProvider) Name() string { return "cashfree" }

type cfCustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cfOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type cfCreateOrderReq struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     json.Number       `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails cfCustomerDetails `json:"customer_details"`
	OrderMeta       cfOrderMeta       `json:"order_meta"`
}

func (p *CashfreeProvider) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	payload := cfCreateOrderReq{
		OrderID:       req.OrderID,
		OrderAmount:   json.Number(req.Amount.StringFixed(2)),
		OrderCurrency: currency,
		CustomerDetails: cfCustomerDetails{
			CustomerID:    req.Customer.ID,
			CustomerName:  req.Customer.Name,
			CustomerEmail: req.Customer.Email,
			CustomerPhone: "+91" + req.Customer.Phone,
		},
		OrderMeta: cfOrderMeta{
			ReturnURL: req.ReturnURL,
			NotifyURL: req.NotifyURL,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	p.log.Info("[cashfree] POST /pg/orders", zap.String("order_id", req.OrderID))
	respBody, err := p.do(ctx, http.MethodPost, "/pg/orders", body)
	if err != nil {
		return nil, err
	}
	var out OrderResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cashfree create order: decode: %w", err)
	}
	out.Raw = json.RawMessage(respBody)
	return &out, nil
}

func (p *CashfreeProvider) FetchPayments(ctx context.Context, orderID string) ([]PaymentAttempt, error) {
	path := "/pg/orders/" + url.PathEscape(orderID) + "/payments"
	respBody, err := p.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out []PaymentAttempt
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cashfree fetch payments: decode: %w", err)
	}
	return out, nil
}

func (p *CashfreeProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", p.ClientID)
	req.Header.Set("x-client-secret", p.Secret)
	req.Header.Set("x-api-version", p.APIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &e)
		p.log.Warn("[cashfree] request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: e.Message}
	}
	return respBody, nil
}
