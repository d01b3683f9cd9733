package service

import (
	"strings"

	"feeportal/internal/domain"
	"feeportal/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	orders OrderStore
	users  UserStore
}

func NewOrderService(orders OrderStore, users UserStore) *OrderService {
	return &OrderService{orders: orders, users: users}
}

type OrderInput struct {
	SchoolID    uint
	TrusteeID   string
	StudentID   uint
	GatewayName string
	Types       string
}

// OrderDetails is an order with its student's fee position.
type OrderDetails struct {
	models.Order
	StudentName  string          `json:"name"`
	StudentEmail string          `json:"email"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	MonthPayment decimal.Decimal `json:"monthPayment"`
	PaymentClear decimal.Decimal `json:"paymentClear"`
}

// NewOrderID returns "ORD-" followed by a random UUID.
func NewOrderID() string {
	return domain.OrderIDPrefix + uuid.NewString()
}

// Create records a payment intent. Identical inputs always yield distinct orders.
func (s *OrderService) Create(actorID uint, in OrderInput) (*models.Order, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	if in.SchoolID != 0 && in.SchoolID != schoolID {
		return nil, forbidden("You can only create orders for your own school")
	}
	student, err := s.users.GetByID(in.StudentID)
	if err != nil || !student.IsStudent() || !student.InSchool(schoolID) {
		return nil, notFound("Student not found")
	}
	o := &models.Order{
		OrderID:     NewOrderID(),
		SchoolID:    schoolID,
		TrusteeID:   strings.TrimSpace(in.TrusteeID),
		StudentID:   student.ID,
		GatewayName: strings.TrimSpace(in.GatewayName),
		Types:       strings.TrimSpace(in.Types),
	}
	if err := s.orders.Create(o); err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return o, nil
}

func (s *OrderService) List(actorID uint, search, sort string, page, limit int) ([]models.Order, int64, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, 0, err
	}
	if sort == "" {
		sort = "-createdAt"
	}
	return s.orders.List(schoolID, search, sort, page, limit)
}

func (s *OrderService) Get(actorID uint, orderID string) (*OrderDetails, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if o.SchoolID != schoolID {
		return nil, forbidden("You are not allowed to access this order")
	}
	d := &OrderDetails{Order: *o}
	if o.Student != nil {
		d.StudentName = o.Student.Name
		d.StudentEmail = o.Student.Email
		d.TotalFees = o.Student.TotalFees
		d.MonthPayment = o.Student.MonthPayment
		d.PaymentClear = o.Student.PaymentClear
	}
	return d, nil
}
