package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"feeportal/config"
	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/repository"
	"feeportal/pkg/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const stalePendingBatch = 50

type PaymentService struct {
	cfg        *config.Config
	provider   payment.Provider
	orders     OrderStore
	statuses   OrderStatusStore
	users      UserStore
	reconciler *Reconciler
	log        *zap.Logger
	now        func() time.Time
}

func NewPaymentService(cfg *config.Config, provider payment.Provider, orders OrderStore, statuses OrderStatusStore, users UserStore, reconciler *Reconciler, log *zap.Logger) *PaymentService {
	return &PaymentService{
		cfg:        cfg,
		provider:   provider,
		orders:     orders,
		statuses:   statuses,
		users:      users,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

type PaymentInput struct {
	CollectID   uint
	OrderAmount decimal.Decimal
	Email       string
	Name        string
	StudentID   uint
	OrderID     string
	Phone       string
}

// PaymentDetails is the first gateway attempt joined with the student's fee position.
type PaymentDetails struct {
	BankReference         string             `json:"bank_reference"`
	CFPaymentID           payment.FlexString `json:"cf_payment_id"`
	OrderAmount           decimal.Decimal    `json:"order_amount"`
	OrderID               string             `json:"order_id"`
	PaymentAmount         decimal.Decimal    `json:"payment_amount"`
	PaymentCompletionTime string             `json:"payment_completion_time"`
	PaymentCurrency       string             `json:"payment_currency"`
	PaymentGroup          string             `json:"payment_group"`
	PaymentMessage        string             `json:"payment_message"`
	PaymentMethod         json.RawMessage    `json:"payment_method,omitempty"`
	PaymentStatus         string             `json:"payment_status"`
	PaymentTime           string             `json:"payment_time"`
	StudentName           string             `json:"student_name"`
	StudentEmail          string             `json:"student_email"`
	TotalFees             decimal.Decimal    `json:"totalFees"`
	Months                int                `json:"months"`
	MonthPayment          decimal.Decimal    `json:"monthPayment"`
	PaymentClear          decimal.Decimal    `json:"paymentClear"`
}

// StatusCheck is the narrow status view of the latest gateway attempt.
type StatusCheck struct {
	CFPaymentID    payment.FlexString `json:"cf_payment_id"`
	OrderID        string             `json:"order_id"`
	PaymentStatus  string             `json:"payment_status"`
	PaymentMessage string             `json:"payment_message"`
	PaymentAmount  decimal.Decimal    `json:"payment_amount"`
	ErrorDetails   json.RawMessage    `json:"error_details,omitempty"`
	BankReference  string             `json:"bank_reference"`
	PaymentTime    string             `json:"payment_time"`
}

const noAttemptsMessage = "No payment attempts yet"

// CreateSession opens a hosted checkout for an order. At most one session exists per order;
// a session that failed before reaching the gateway is reopened.
func (s *PaymentService) CreateSession(ctx context.Context, actorID uint, in PaymentInput) (json.RawMessage, error) {
	actor, err := loadActor(s.users, actorID)
	if err != nil {
		return nil, err
	}
	student, err := s.users.GetByID(in.StudentID)
	if err != nil || !student.IsStudent() {
		return nil, notFound("Student not found")
	}
	if err := canAccessStudent(actor, student.ID, student.SchoolID); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByOrderID(in.OrderID)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if in.CollectID != 0 && in.CollectID != order.ID {
		return nil, invalid("collect_id does not match the order")
	}
	if order.StudentID != student.ID {
		return nil, invalid("Order does not belong to this student")
	}
	if !in.OrderAmount.IsPositive() {
		return nil, invalid("Order amount must be greater than 0")
	}
	existing, err := s.statuses.GetByOrderID(order.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && !reopenable(existing) {
		return nil, conflict("A payment session already exists for this order")
	}

	schoolID := order.SchoolID
	if student.SchoolID != nil {
		schoolID = *student.SchoolID
	}
	row := &models.OrderStatus{
		CollectID:         order.ID,
		OrderID:           order.OrderID,
		OrderAmount:       in.OrderAmount.Round(2),
		TransactionAmount: decimal.Zero,
		PaymentMessage:    "Payment Pending",
		Status:            domain.TxStatusPending,
		PaymentTime:       s.now(),
		StudentInfo: models.StudentInfo{
			StudentID: student.ID,
			Name:      strings.TrimSpace(in.Name),
			Email:     normalizeEmail(in.Email),
			Phone:     in.Phone,
		},
		SchoolID: schoolID,
	}
	if existing != nil {
		row.ID = existing.ID
		row.Version = existing.Version
		row.CreatedAt = existing.CreatedAt
		if err := s.statuses.ApplyTransition(row, decimal.Zero); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return nil, conflict("A payment session already exists for this order")
			}
			return nil, err
		}
		s.log.Info("[payment] reopened failed session", zap.String("order_id", order.OrderID))
	} else if err := s.statuses.Create(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("A payment session already exists for this order")
		}
		return nil, err
	}

	resp, err := s.provider.CreateOrder(ctx, payment.OrderRequest{
		OrderID:  order.OrderID,
		Amount:   row.OrderAmount,
		Currency: domain.CurrencyINR,
		Customer: payment.Customer{
			ID:    strconv.FormatUint(uint64(student.ID), 10),
			Name:  row.StudentInfo.Name,
			Email: row.StudentInfo.Email,
			Phone: in.Phone,
		},
		ReturnURL: strings.TrimRight(s.cfg.URLs.FrontendURL, "/") + "/payment_status/" + order.OrderID,
		NotifyURL: strings.TrimRight(s.cfg.URLs.BackendURL, "/") + "/api/webhook",
	})
	if err != nil {
		msg := "Failed to create payment session"
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) && gerr.Message != "" {
			msg = gerr.Message
		}
		s.log.Error("[payment] create order failed", zap.String("order_id", order.OrderID), zap.Error(err))
		if _, ferr := s.reconciler.Fail(row, msg); ferr != nil {
			s.log.Error("[payment] could not mark session failed", zap.String("order_id", order.OrderID), zap.Error(ferr))
		}
		return nil, upstream(msg)
	}
	cfOrderID := resp.CFOrderID.String()
	if cfOrderID == "" {
		cfOrderID = order.OrderID
	}
	if err := s.recordGatewayOrder(row, cfOrderID); err != nil {
		s.log.Warn("[payment] could not record gateway order", zap.String("order_id", order.OrderID), zap.Error(err))
	}
	return resp.Raw, nil
}

// recordGatewayOrder stores the gateway's order id on row, retrying when a
// webhook updated the row first.
func (s *PaymentService) recordGatewayOrder(row *models.OrderStatus, cfOrderID string) error {
	var err error
	for i := 0; i < settleAttempts; i++ {
		row.CFOrderID = cfOrderID
		if err = s.statuses.ApplyTransition(row, decimal.Zero); !errors.Is(err, repository.ErrStaleVersion) {
			return err
		}
		fresh, gerr := s.statuses.GetByOrderID(row.OrderID)
		if gerr != nil {
			return gerr
		}
		*row = *fresh
	}
	return err
}

// reopenable reports whether a FAILED row never reached the gateway, so the
// same order id can open a fresh session.
func reopenable(row *models.OrderStatus) bool {
	return row.Status == domain.TxStatusFailed && row.CFOrderID == ""
}

// pickAttempt prefers a SUCCESS attempt over the most recent one.
func pickAttempt(attempts []payment.PaymentAttempt) *payment.PaymentAttempt {
	for i := range attempts {
		if attempts[i].PaymentStatus == domain.GatewaySuccess {
			return &attempts[i]
		}
	}
	return &attempts[0]
}

// Details fetches the settling gateway attempt with the student's fee position.
func (s *PaymentService) Details(ctx context.Context, actorID uint, orderID string) (*PaymentDetails, error) {
	row, attempts, err := s.lookup(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	d := &PaymentDetails{OrderID: orderID, OrderAmount: row.OrderAmount}
	if len(attempts) == 0 {
		d.PaymentStatus = domain.GatewayNoAttempts
		d.PaymentMessage = noAttemptsMessage
	} else {
		a := pickAttempt(attempts)
		d.BankReference = a.BankReference
		d.CFPaymentID = a.CFPaymentID
		d.OrderAmount = a.OrderAmount
		d.PaymentAmount = a.PaymentAmount
		d.PaymentCompletionTime = a.PaymentCompletionTime
		d.PaymentCurrency = a.PaymentCurrency
		d.PaymentGroup = a.PaymentGroup
		d.PaymentMessage = a.PaymentMessage
		d.PaymentMethod = a.PaymentMethod
		d.PaymentStatus = a.PaymentStatus
		d.PaymentTime = a.PaymentTime
		if a.OrderAmount.IsZero() {
			d.OrderAmount = row.OrderAmount
		}
	}
	if st, err := s.users.GetByID(row.StudentInfo.StudentID); err == nil {
		d.StudentName = st.Name
		d.StudentEmail = st.Email
		d.TotalFees = st.TotalFees
		d.Months = st.Months
		d.MonthPayment = st.MonthPayment
		d.PaymentClear = st.PaymentClear
	}
	return d, nil
}

// CheckStatus returns the settling attempt's status and settles the local row when terminal.
func (s *PaymentService) CheckStatus(ctx context.Context, actorID uint, orderID string) (*StatusCheck, error) {
	_, attempts, err := s.lookup(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return &StatusCheck{
			OrderID:        orderID,
			PaymentStatus:  domain.GatewayNoAttempts,
			PaymentMessage: noAttemptsMessage,
		}, nil
	}
	a := pickAttempt(attempts)
	return &StatusCheck{
		CFPaymentID:    a.CFPaymentID,
		OrderID:        a.OrderID,
		PaymentStatus:  a.PaymentStatus,
		PaymentMessage: a.PaymentMessage,
		PaymentAmount:  a.PaymentAmount,
		ErrorDetails:   a.ErrorDetails,
		BankReference:  a.BankReference,
		PaymentTime:    a.PaymentTime,
	}, nil
}

// lookup loads the local row, checks access, fetches gateway attempts and reconciles.
func (s *PaymentService) lookup(ctx context.Context, actorID uint, orderID string) (*models.OrderStatus, []payment.PaymentAttempt, error) {
	actor, err := loadActor(s.users, actorID)
	if err != nil {
		return nil, nil, err
	}
	row, err := s.statuses.GetByOrderID(orderID)
	if err != nil {
		return nil, nil, storeErr(err, "Payment not found")
	}
	schoolID := row.SchoolID
	if err := canAccessStudent(actor, row.StudentInfo.StudentID, &schoolID); err != nil {
		return nil, nil, err
	}
	attempts, err := s.provider.FetchPayments(ctx, orderID)
	if err != nil {
		s.log.Error("[payment] fetch payments failed", zap.String("order_id", orderID), zap.Error(err))
		msg := "Failed to fetch payment details"
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) && gerr.Message != "" {
			msg = gerr.Message
		}
		return nil, nil, upstream(msg)
	}
	if len(attempts) > 0 {
		if _, err := s.reconciler.Apply(row, pickAttempt(attempts)); err != nil {
			s.log.Warn("[payment] reconcile on lookup failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return row, attempts, nil
}

// ReconcilePending re-polls PENDING rows older than the configured delay and
// expires sessions without attempts past the payment expiry. Returns rows settled.
func (s *PaymentService) ReconcilePending(ctx context.Context) (int, error) {
	now := s.now()
	rows, err := s.statuses.ListStalePending(now.Add(-s.cfg.Reconcile.After), stalePendingBatch)
	if err != nil {
		return 0, err
	}
	settled := 0
	for i := range rows {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		row := &rows[i]
		attempts, err := s.provider.FetchPayments(ctx, row.OrderID)
		if err != nil {
			s.log.Warn("[reconcile] fetch payments failed", zap.String("order_id", row.OrderID), zap.Error(err))
			continue
		}
		var outcome Outcome
		if len(attempts) == 0 {
			if now.Sub(row.PaymentTime) < s.cfg.Reconcile.PaymentExpiry {
				continue
			}
			outcome, err = s.reconciler.Fail(row, "Payment session expired")
		} else {
			outcome, err = s.reconciler.Apply(row, pickAttempt(attempts))
		}
		if err != nil {
			s.log.Warn("[reconcile] settle failed", zap.String("order_id", row.OrderID), zap.Error(err))
			continue
		}
		if outcome == OutcomeApplied {
			settled++
		}
	}
	return settled, nil
}

// canAccessStudent allows students their own records and staff records of their school.
func canAccessStudent(actor *models.User, studentID uint, schoolID *uint) error {
	if actor.IsStudent() {
		if actor.ID != studentID {
			return forbidden("You can only access your own payments")
		}
		return nil
	}
	if actor.SchoolID == nil || schoolID == nil || *actor.SchoolID != *schoolID {
		return forbidden("You are not allowed to access this payment")
	}
	return nil
}
