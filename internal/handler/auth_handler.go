package handler

import (
	"encoding/json"
	"net/http"

	"feeportal/internal/models"
	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditWriter records security-relevant actions.
type AuditWriter interface {
	Create(l *models.AuditLog) error
}

type AuthHandler struct {
	svc   *service.AuthService
	audit AuditWriter
	log   *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, audit AuditWriter, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, audit: audit, log: log}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyOTPRequest struct {
	Email string      `json:"email" binding:"required,email"`
	OTP   json.Number `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	ResetToken string `json:"resetToken" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserSummary is the public part of a user returned on login.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserSummary `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(u.ID, "register", c)
	created(c, "OTP sent to your email, please verify your account", nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.VerifyOTP(req.Email, req.OTP.String())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(u.ID, "verify_otp", c)
	ok(c, "Email verified successfully", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, pair, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(u.ID, "login", c)
	ok(c, "Login successful", LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ForgetPassword(req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	ok(c, "Password reset link sent to your email", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.ResetPassword(req.ResetToken, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(u.ID, "reset_password", c)
	ok(c, "Password updated successfully", nil)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.svc.RefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed", pair)
}

func (h *AuthHandler) auditLog(userID uint, action string, c *gin.Context) {
	if h.audit == nil {
		return
	}
	err := h.audit.Create(&models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.log.Warn("[audit] write failed", zap.String("action", action), zap.Error(err))
	}
}
