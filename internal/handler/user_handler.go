package handler

import (
	"feeportal/internal/middleware"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewUserHandler(svc *service.AuthService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// Me returns the caller's profile. Secrets are never serialized.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.svc.Me(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "User profile", u)
}

func (h *UserHandler) Health(c *gin.Context) {
	ok(c, "OK", nil)
}
