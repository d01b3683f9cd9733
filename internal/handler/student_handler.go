package handler

import (
	"feeportal/internal/domain"
	"feeportal/internal/middleware"
	"feeportal/internal/models"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StudentHandler struct {
	svc *service.StudentService
	log *zap.Logger
}

func NewStudentHandler(svc *service.StudentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{svc: svc, log: log}
}

type CreateStudentRequest struct {
	Name         string          `json:"name" binding:"required"`
	Email        string          `json:"email" binding:"required,email"`
	SchoolID     uint            `json:"schoolId"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	Months       int             `json:"months" binding:"required,min=1,max=12"`
	MonthPayment decimal.Decimal `json:"monthPayment"`
}

// UpdateStudentRequest leaves months unchanged when omitted.
type UpdateStudentRequest struct {
	Name   string `json:"name" binding:"required"`
	Months *int   `json:"months" binding:"omitempty,min=0,max=12"`
}

// StudentRow is the list projection of a student.
type StudentRow struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	Months       int             `json:"months"`
	MonthPayment decimal.Decimal `json:"monthPayment"`
	PaymentClear decimal.Decimal `json:"paymentClear"`
}

type StudentOption struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StudentList struct {
	Students []StudentRow `json:"students"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
}

func toStudentRow(u models.User) StudentRow {
	return StudentRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		TotalFees:    u.TotalFees,
		Months:       u.Months,
		MonthPayment: u.MonthPayment,
		PaymentClear: u.PaymentClear,
	}
}

func (h *StudentHandler) List(c *gin.Context) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	page, limit := domain.NormalizePage(q.Page, q.Limit)
	rows, total, err := h.svc.List(middleware.GetUserID(c), q.Search, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]StudentRow, 0, len(rows))
	for _, u := range rows {
		out = append(out, toStudentRow(u))
	}
	ok(c, "Students fetched successfully", StudentList{Students: out, Total: total, Page: page, Limit: limit})
}

func (h *StudentHandler) Options(c *gin.Context) {
	rows, err := h.svc.Options(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]StudentOption, 0, len(rows))
	for _, u := range rows {
		out = append(out, StudentOption{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	ok(c, "Student options", out)
}

func (h *StudentHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	st, err := h.svc.Get(middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Student details", st)
}

func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.svc.Create(middleware.GetUserID(c), service.StudentInput{
		Name:         req.Name,
		Email:        req.Email,
		SchoolID:     req.SchoolID,
		TotalFees:    req.TotalFees,
		Months:       req.Months,
		MonthPayment: req.MonthPayment,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, "Student created successfully", st)
}

func (h *StudentHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.svc.Update(middleware.GetUserID(c), id, req.Name, req.Months)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Student updated successfully", st)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Student deleted successfully", nil)
}
