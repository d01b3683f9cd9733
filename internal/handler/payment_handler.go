package handler

import (
	"feeportal/internal/middleware"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	svc *service.PaymentService
	log *zap.Logger
}

func NewPaymentHandler(svc *service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log}
}

type CreatePaymentRequest struct {
	CollectID   uint            `json:"collect_id"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	Email       string          `json:"email" binding:"required,email"`
	Name        string          `json:"name" binding:"required"`
	StudentID   uint            `json:"student_id" binding:"required"`
	OrderID     string          `json:"order_id" binding:"required"`
	Phone       string          `json:"phone" binding:"required,phone10"`
}

// Create opens a gateway checkout session and returns the gateway response verbatim.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	raw, err := h.svc.CreateSession(c.Request.Context(), middleware.GetUserID(c), service.PaymentInput{
		CollectID:   req.CollectID,
		OrderAmount: req.OrderAmount,
		Email:       req.Email,
		Name:        req.Name,
		StudentID:   req.StudentID,
		OrderID:     req.OrderID,
		Phone:       req.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, "Payment session created", raw)
}

func (h *PaymentHandler) Details(c *gin.Context) {
	d, err := h.svc.Details(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Payment details", d)
}

func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	s, err := h.svc.CheckStatus(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Payment status", s)
}
