package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string // 10 digits, without country code
}

type OrderRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Customer  Customer
	ReturnURL string
	NotifyURL string
}

// OrderResponse is the gateway's create-order answer. Raw holds the body verbatim.
type OrderResponse struct {
	CFOrderID        FlexString      `json:"cf_order_id"`
	OrderID          string          `json:"order_id"`
	OrderStatus      string          `json:"order_status"`
	PaymentSessionID string          `json:"payment_session_id"`
	PaymentLink      string          `json:"payment_link"`
	Raw              json.RawMessage `json:"-"`
}

// PaymentAttempt is one entry of the gateway's payments-for-order list.
type PaymentAttempt struct {
	CFPaymentID           FlexString      `json:"cf_payment_id"`
	OrderID               string          `json:"order_id"`
	PaymentStatus         string          `json:"payment_status"`
	PaymentMessage        string          `json:"payment_message"`
	PaymentAmount         decimal.Decimal `json:"payment_amount"`
	OrderAmount           decimal.Decimal `json:"order_amount"`
	PaymentCurrency       string          `json:"payment_currency"`
	PaymentGroup          string          `json:"payment_group"`
	PaymentMethod         json.RawMessage `json:"payment_method,omitempty"`
	BankReference         string          `json:"bank_reference"`
	PaymentTime           string          `json:"payment_time"`
	PaymentCompletionTime string          `json:"payment_completion_time"`
	ErrorDetails          json.RawMessage `json:"error_details,omitempty"`

	// Flat fields some webhook versions send instead of payment_group/payment_method.
	PaymentMode string `json:"payment_mode,omitempty"`
	CardBrand   string `json:"card_brand,omitempty"`
	CardLast4   string `json:"card_last4,omitempty"`
}

// Mode returns the payment channel, e.g. CARD or UPI.
func (a *PaymentAttempt) Mode() string {
	if a.PaymentGroup != "" {
		return strings.ToUpper(a.PaymentGroup)
	}
	if a.PaymentMode != "" {
		return strings.ToUpper(a.PaymentMode)
	}
	return "UNKNOWN"
}

// Details renders "<BRAND> ending with <last4>" for cards and "<mode> - <message>" otherwise.
func (a *PaymentAttempt) Details() string {
	mode := a.Mode()
	if mode == "CARD" || mode == "CREDIT_CARD" || mode == "DEBIT_CARD" {
		brand, last4 := a.cardInfo()
		return fmt.Sprintf("%s ending with %s", brand, last4)
	}
	return fmt.Sprintf("%s - %s", mode, a.PaymentMessage)
}

func (a *PaymentAttempt) cardInfo() (brand, last4 string) {
	brand, last4 = a.CardBrand, a.CardLast4
	if len(a.PaymentMethod) > 0 {
		var pm struct {
			Card struct {
				CardNumber  string `json:"card_number"`
				CardNetwork string `json:"card_network"`
			} `json:"card"`
		}
		if err := json.Unmarshal(a.PaymentMethod, &pm); err == nil {
			if pm.Card.CardNetwork != "" {
				brand = pm.Card.CardNetwork
			}
			if n := len(pm.Card.CardNumber); n >= 4 {
				last4 = pm.Card.CardNumber[n-4:]
			}
		}
	}
	if brand == "" {
		brand = "Card"
	}
	if last4 == "" {
		last4 = "****"
	}
	return strings.ToUpper(brand), last4
}

// PaidAt parses payment_time, falling back to now.
func (a *PaymentAttempt) PaidAt() time.Time {
	for _, v := range []string{a.PaymentCompletionTime, a.PaymentTime} {
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Now()
}

// ErrorMessage extracts error_details.error_description when present.
func (a *PaymentAttempt) ErrorMessage() string {
	if len(a.ErrorDetails) == 0 {
		return ""
	}
	var ed struct {
		ErrorDescription string `json:"error_description"`
		ErrorReason      string `json:"error_reason"`
	}
	if err := json.Unmarshal(a.ErrorDetails, &ed); err != nil {
		return ""
	}
	if ed.ErrorDescription != "" {
		return ed.ErrorDescription
	}
	return ed.ErrorReason
}

// Provider is a hosted-checkout payment gateway.
type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	FetchPayments(ctx context.Context, orderID string) ([]PaymentAttempt, error)
}

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return e.Message
}

// FlexString accepts either a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
