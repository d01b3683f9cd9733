package domain

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// OrderStatus.Status values.
const (
	TxStatusActive  = "ACTIVE"
	TxStatusPending = "PENDING"
	TxStatusSuccess = "SUCCESS"
	TxStatusFailed  = "FAILED"
)

// Cashfree payment_status values.
const (
	GatewaySuccess     = "SUCCESS"
	GatewayFailed      = "FAILED"
	GatewayPending     = "PENDING"
	GatewayUserDropped = "USER_DROPPED"
	GatewayNoAttempts  = "NO_ATTEMPTS"
)

// WebhookLog.Status values.
const (
	WebhookPending   = "pending"
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
	WebhookFailed    = "failed"
)

const (
	GatewayCashfree = "cashfree"
	OrderIDPrefix   = "ORD-"
	CurrencyINR     = "INR"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// IsTerminal reports whether a transaction has a final gateway outcome.
func IsTerminal(status string) bool {
	return status == TxStatusSuccess || status == TxStatusFailed
}

// CanSettle reports whether a transaction in status from may move to the terminal status to.
// A FAILED transaction can still become SUCCESS when the customer retries within the session.
func CanSettle(from, to string) bool {
	switch from {
	case TxStatusPending, TxStatusActive:
		return IsTerminal(to)
	case TxStatusFailed:
		return to == TxStatusSuccess
	default:
		return false
	}
}
