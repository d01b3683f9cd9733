package handler

import (
	"feeportal/internal/domain"
	"feeportal/internal/middleware"
	"feeportal/internal/models"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TeacherHandler struct {
	svc *service.TeacherService
	log *zap.Logger
}

func NewTeacherHandler(svc *service.TeacherService, log *zap.Logger) *TeacherHandler {
	return &TeacherHandler{svc: svc, log: log}
}

type CreateTeacherRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	SchoolID uint   `json:"schoolId"`
}

type UpdateTeacherRequest struct {
	Name string `json:"name" binding:"required"`
}

type TeacherList struct {
	Teachers []models.User `json:"teachers"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

func (h *TeacherHandler) List(c *gin.Context) {
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
	if rows == nil {
		rows = []models.User{}
	}
	ok(c, "Teachers fetched successfully", TeacherList{Teachers: rows, Total: total, Page: page, Limit: limit})
}

func (h *TeacherHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	t, err := h.svc.Get(middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Teacher details", t)
}

func (h *TeacherHandler) Create(c *gin.Context) {
	var req CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.svc.Create(middleware.GetUserID(c), req.Name, req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, "Teacher created successfully", t)
}

func (h *TeacherHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.svc.Update(middleware.GetUserID(c), id, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Teacher updated successfully", t)
}

func (h *TeacherHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Teacher deleted successfully", nil)
}
