package ws

import (
	"net/http"
	"time"

	"feeportal/config"
	"feeportal/internal/auth"
	"feeportal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const pingPeriod = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserLookup resolves the account behind a token.
type UserLookup interface {
	GetByID(id uint) (*models.User, error)
}

// UpgradeTransactionsWS authenticates ?token=, then streams the caller's school events.
// Only staff linked to a school are accepted.
func UpgradeTransactionsWS(cfg *config.JWTConfig, users UserLookup, hub *Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "token required", "data": nil})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "invalid token", "data": nil})
			return
		}
		u, err := users.GetByID(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "invalid token", "data": nil})
			return
		}
		if u.IsStudent() || u.SchoolID == nil {
			c.JSON(http.StatusForbidden, gin.H{"statusCode": http.StatusForbidden, "message": "forbidden", "data": nil})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("[ws] upgrade failed", zap.Uint("user_id", u.ID), zap.Error(err))
			return
		}
		defer conn.Close()

		client := NewClient(u.ID, *u.SchoolID)
		hub.Register(client)
		defer client.Close()

		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection and pings periodically.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames until the connection closes.
func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
