package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feeportal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(h gin.HandlerFunc) (int, Envelope) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	var env Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrUpstream, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind.Error(), func(t *testing.T) {
			code, env := serve(func(c *gin.Context) {
				respondError(c, zap.NewNop(), &service.Error{Kind: tc.kind, Msg: "boom"})
			})
			assert.Equal(t, tc.want, code)
			assert.Equal(t, tc.want, env.StatusCode)
			assert.Equal(t, "boom", env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestRespondErrorHidesUnknownErrors(t *testing.T) {
	code, env := serve(func(c *gin.Context) {
		respondError(c, zap.NewNop(), errors.New("dial tcp 10.0.0.1:3306: refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", env.Message)
}

func TestPhone10(t *testing.T) {
	require.NoError(t, RegisterValidators())
	type req struct {
		Phone string `json:"phone" binding:"required,phone10"`
	}
	for phone, valid := range map[string]bool{"9876543210": true, "98765": false, "98765432100": false, "98765abcde": false} {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(map[string]string{"phone": phone})
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var r req
		err := c.ShouldBindJSON(&r)
		assert.Equal(t, valid, err == nil, phone)
	}
}

func TestSchoolUpdateDates(t *testing.T) {
	start, end := "2025-04-01", "2026-03-31T00:00:00Z"
	in, msg := UpdateSchoolRequest{SessionStart: &start, SessionEnd: &end}.toUpdate()
	require.Empty(t, msg)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *in.SessionStart)
	assert.Equal(t, 2026, in.SessionEnd.Year())

	bad := "01/04/2025"
	_, msg = UpdateSchoolRequest{SessionStart: &bad}.toUpdate()
	assert.Equal(t, "sessionStart must be a valid date", msg)
}
