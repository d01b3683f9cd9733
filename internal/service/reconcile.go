package service

import (
	"errors"

	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/repository"
	"feeportal/pkg/mail"
	"feeportal/pkg/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome of applying a gateway result to a transaction.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnchanged Outcome = "unchanged"
)

// Reconciler moves transactions to a terminal status and credits each SUCCESS exactly once.
type Reconciler struct {
	statuses  OrderStatusStore
	mailer    Mailer
	publisher TransactionPublisher
	log       *zap.Logger
}

func NewReconciler(statuses OrderStatusStore, mailer Mailer, publisher TransactionPublisher, log *zap.Logger) *Reconciler {
	return &Reconciler{statuses: statuses, mailer: mailer, publisher: publisher, log: log}
}

// terminalStatus maps a gateway payment_status to a local terminal status, or "".
func terminalStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case domain.GatewaySuccess:
		return domain.TxStatusSuccess
	case domain.GatewayFailed, domain.GatewayUserDropped:
		return domain.TxStatusFailed
	default:
		return ""
	}
}

// settleAttempts bounds how often a transition is retried after losing a version race.
const settleAttempts = 3

// Apply records attempt a on s. A SUCCESS credits the student's paid balance.
// A FAILED transaction still accepts a later SUCCESS for the same order.
func (r *Reconciler) Apply(s *models.OrderStatus, a *payment.PaymentAttempt) (Outcome, error) {
	target := terminalStatus(a.PaymentStatus)
	if target == "" {
		if domain.IsTerminal(s.Status) {
			return OutcomeDuplicate, nil
		}
		return OutcomeUnchanged, nil
	}
	credit := decimal.Zero
	if target == domain.TxStatusSuccess {
		credit = a.PaymentAmount
	}
	return r.settle(s, target, credit, func(next *models.OrderStatus) {
		next.TransactionAmount = a.PaymentAmount
		next.PaymentMode = a.Mode()
		next.PaymentDetails = a.Details()
		next.BankReference = a.BankReference
		next.PaymentMessage = a.PaymentMessage
		next.ErrorMessage = a.ErrorMessage()
		next.PaymentTime = a.PaidAt()
	})
}

// Fail marks a non-terminal transaction FAILED without touching balances.
func (r *Reconciler) Fail(s *models.OrderStatus, message string) (Outcome, error) {
	return r.settle(s, domain.TxStatusFailed, decimal.Zero, func(next *models.OrderStatus) {
		next.PaymentMessage = message
		next.ErrorMessage = message
	})
}

func (r *Reconciler) settle(cur *models.OrderStatus, target string, credit decimal.Decimal, fill func(*models.OrderStatus)) (Outcome, error) {
	for i := 0; i < settleAttempts; i++ {
		if !domain.CanSettle(cur.Status, target) {
			return OutcomeDuplicate, nil
		}
		next := *cur
		next.Status = target
		fill(&next)
		err := r.statuses.ApplyTransition(&next, credit)
		if err == nil {
			*cur = next
			r.log.Info("[reconcile] transaction settled",
				zap.String("order_id", cur.OrderID),
				zap.String("status", cur.Status),
				zap.String("amount", cur.TransactionAmount.StringFixed(2)))
			r.notify(cur)
			return OutcomeApplied, nil
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return "", err
		}
		fresh, gerr := r.statuses.GetByOrderID(cur.OrderID)
		if gerr != nil {
			return "", storeErr(gerr, "Payment not found")
		}
		*cur = *fresh
	}
	return "", storeErr(repository.ErrStaleVersion, "Payment not found")
}

func (r *Reconciler) notify(s *models.OrderStatus) {
	if r.publisher != nil {
		r.publisher.PublishTransaction(s.SchoolID, s)
	}
	if r.mailer == nil || s.StudentInfo.Email == "" {
		return
	}
	receipt := mail.PaymentReceipt{
		Name:          s.StudentInfo.Name,
		OrderID:       s.OrderID,
		Amount:        s.OrderAmount,
		PaymentMode:   s.PaymentMode,
		BankReference: s.BankReference,
		Message:       s.PaymentMessage,
		PaidAt:        s.PaymentTime,
	}
	var err error
	if s.Status == domain.TxStatusSuccess {
		receipt.Amount = s.TransactionAmount
		err = r.mailer.SendPaymentSuccessful(s.StudentInfo.Email, receipt)
	} else {
		err = r.mailer.SendPaymentFailed(s.StudentInfo.Email, receipt)
	}
	if err != nil {
		r.log.Warn("[mail] payment notice not delivered", zap.String("order_id", s.OrderID), zap.Error(err))
	}
}
