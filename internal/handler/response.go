package handler

import (
	"errors"
	"net/http"
	"strconv"

	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{StatusCode: status, Message: message, Data: data})
}

func ok(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func created(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

// respondError maps service error kinds to status codes. Unknown errors are logged and hidden.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respond(c, http.StatusNotFound, svcErr.Msg, nil)
		case errors.Is(err, service.ErrValidation):
			respond(c, http.StatusBadRequest, svcErr.Msg, nil)
		case errors.Is(err, service.ErrConflict):
			respond(c, http.StatusConflict, svcErr.Msg, nil)
		case errors.Is(err, service.ErrUnauthorized):
			respond(c, http.StatusUnauthorized, svcErr.Msg, nil)
		case errors.Is(err, service.ErrForbidden):
			respond(c, http.StatusForbidden, svcErr.Msg, nil)
		default:
			log.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
			respond(c, http.StatusInternalServerError, svcErr.Msg, nil)
		}
		return
	}
	log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	respond(c, http.StatusInternalServerError, "internal server error", nil)
}

// badRequest reports a binding failure, naming the first invalid field when known.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		respond(c, http.StatusBadRequest, validationMessage(fe), nil)
		return
	}
	respond(c, http.StatusBadRequest, err.Error(), nil)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " should not be empty"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	case phone10Tag:
		return fe.Field() + " must be 10 digits"
	default:
		return fe.Field() + " is invalid"
	}
}

// PageQuery is the common search/page/limit query string.
type PageQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respond(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
