package handler

import (
	"net/http"
	"time"

	"feeportal/internal/middleware"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SchoolHandler struct {
	svc *service.SchoolService
	log *zap.Logger
}

func NewSchoolHandler(svc *service.SchoolService, log *zap.Logger) *SchoolHandler {
	return &SchoolHandler{svc: svc, log: log}
}

// UpdateSchoolRequest is a partial update; omitted fields are unchanged.
type UpdateSchoolRequest struct {
	SchoolName   *string `json:"schoolName" binding:"omitempty,min=1"`
	Address      *string `json:"address" binding:"omitempty,min=1"`
	Phone        *string `json:"phone" binding:"omitempty,min=1"`
	SessionStart *string `json:"sessionStart"`
	SessionEnd   *string `json:"sessionEnd"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (r UpdateSchoolRequest) toUpdate() (service.SchoolUpdate, string) {
	out := service.SchoolUpdate{SchoolName: r.SchoolName, Address: r.Address, Phone: r.Phone}
	if r.SessionStart != nil {
		t, err := parseDate(*r.SessionStart)
		if err != nil {
			return out, "sessionStart must be a valid date"
		}
		out.SessionStart = &t
	}
	if r.SessionEnd != nil {
		t, err := parseDate(*r.SessionEnd)
		if err != nil {
			return out, "sessionEnd must be a valid date"
		}
		out.SessionEnd = &t
	}
	return out, ""
}

func (h *SchoolHandler) bindUpdate(c *gin.Context) (service.SchoolUpdate, bool) {
	var req UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.SchoolUpdate{}, false
	}
	in, msg := req.toUpdate()
	if msg != "" {
		respond(c, http.StatusBadRequest, msg, nil)
		return in, false
	}
	return in, true
}

// Get returns the admin's school, creating the default profile on first access.
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.svc.GetOrCreate(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "School details", school)
}

func (h *SchoolHandler) UpdateOwn(c *gin.Context) {
	in, valid := h.bindUpdate(c)
	if !valid {
		return
	}
	school, err := h.svc.UpdateOwn(middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "School updated successfully", school)
}

func (h *SchoolHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	in, valid := h.bindUpdate(c)
	if !valid {
		return
	}
	school, err := h.svc.Update(middleware.GetUserID(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "School updated successfully", school)
}

func (h *SchoolHandler) Options(c *gin.Context) {
	opts, err := h.svc.Options(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "School options", opts)
}
