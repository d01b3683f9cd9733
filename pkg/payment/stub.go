package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// StubProvider is an in-memory gateway for development and tests.
type StubProvider struct {
	mu       sync.Mutex
	orders   map[string]OrderRequest
	payments map[string][]PaymentAttempt
	// FailCreate, when set, is returned by CreateOrder.
	FailCreate error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{
		orders:   make(map[string]OrderRequest),
		payments: make(map[string][]PaymentAttempt),
	}
}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	s.orders[req.OrderID] = req
	out := &OrderResponse{
		CFOrderID:        FlexString(fmt.Sprintf("stub_%d", len(s.orders))),
		OrderID:          req.OrderID,
		OrderStatus:      "ACTIVE",
		PaymentSessionID: "session_" + req.OrderID,
		PaymentLink:      "https://stub.local/checkout/" + req.OrderID,
	}
	raw, _ := json.Marshal(out)
	out.Raw = raw
	return out, nil
}

func (s *StubProvider) FetchPayments(ctx context.Context, orderID string) ([]PaymentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PaymentAttempt(nil), s.payments[orderID]...), nil
}

// AddPayment records an attempt so FetchPayments returns it first.
func (s *StubProvider) AddPayment(orderID string, a PaymentAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.OrderID = orderID
	s.payments[orderID] = append([]PaymentAttempt{a}, s.payments[orderID]...)
}

// Orders returns the create-order requests seen so far.
func (s *StubProvider) Orders() map[string]OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OrderRequest, len(s.orders))
	for k, v := range s.orders {
		out[k] = v
	}
	return out
}
