package handler

import (
	"feeportal/internal/domain"
	"feeportal/internal/middleware"
	"feeportal/internal/models"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc *service.OrderService
	log *zap.Logger
}

func NewOrderHandler(svc *service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

type CreateOrderRequest struct {
	SchoolID    uint   `json:"school_id" binding:"required"`
	TrusteeID   string `json:"trustee_id" binding:"required"`
	StudentInfo uint   `json:"student_info" binding:"required"`
	GatewayName string `json:"gateway_name" binding:"required"`
	Types       string `json:"types" binding:"required"`
}

type OrderQuery struct {
	PageQuery
	Sort string `form:"sort"`
}

type OrderList struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.svc.Create(middleware.GetUserID(c), service.OrderInput{
		SchoolID:    req.SchoolID,
		TrusteeID:   req.TrusteeID,
		StudentID:   req.StudentInfo,
		GatewayName: req.GatewayName,
		Types:       req.Types,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, "Order created successfully", o)
}

func (h *OrderHandler) List(c *gin.Context) {
	var q OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	page, limit := domain.NormalizePage(q.Page, q.Limit)
	rows, total, err := h.svc.List(middleware.GetUserID(c), q.Search, q.Sort, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if rows == nil {
		rows = []models.Order{}
	}
	ok(c, "Orders fetched successfully", OrderList{Orders: rows, Total: total, Page: page, Limit: limit})
}

func (h *OrderHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Order details", d)
}
