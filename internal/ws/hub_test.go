package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feeportal/config"
	"feeportal/internal/auth"
	"feeportal/internal/domain"
	"feeportal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestHubBroadcastsPerSchool(t *testing.T) {
	hub := NewHub()
	a1 := NewClient(1, 10)
	a2 := NewClient(2, 10)
	b := NewClient(3, 20)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	assert.Equal(t, 3, hub.ClientCount())

	hub.PublishTransaction(10, &models.OrderStatus{OrderID: "ORD-1", Status: domain.TxStatusSuccess})

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, EventTransactionUpdated, ev.Type)
			assert.Equal(t, "ORD-1", ev.Transaction.OrderID)
		default:
			t.Fatalf("client %d got no event", c.UserID)
		}
	}
	assert.Empty(t, b.Send)
}

func TestClosedClientIsSkipped(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, 10)
	hub.Register(c)
	c.Close()
	c.Close()

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.BroadcastToSchool(10, map[string]string{"type": "ping"}))
}

func TestFullBufferDropsFrame(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, SchoolID: 10, Send: make(chan []byte, 1)}
	hub.Register(c)

	assert.Equal(t, 1, hub.BroadcastToSchool(10, "first"))
	assert.Equal(t, 0, hub.BroadcastToSchool(10, "second"))
}

type stubUsers map[uint]*models.User

func (s stubUsers) GetByID(id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestUpgradeTransactionsWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "s", RefreshSecret: "r", AccessExpiry: time.Minute, RefreshExpiry: time.Hour}
	school := uint(10)
	users := stubUsers{
		1: {ID: 1, Role: domain.RoleAdmin, SchoolID: &school},
		2: {ID: 2, Role: domain.RoleStudent, SchoolID: &school},
	}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", UpgradeTransactionsWS(cfg, users, hub, zap.NewNop()))
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	studentToken, err := auth.GenerateAccessToken(cfg, 2, "kid@example.com", domain.RoleStudent)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+studentToken, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken, err := auth.GenerateAccessToken(cfg, 1, "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+adminToken, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.PublishTransaction(school, &models.OrderStatus{OrderID: "ORD-9"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "ORD-9", ev.Transaction.OrderID)
}
