package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"bloodalert/config"
	"bloodalert/internal/auth"
	"bloodalert/internal/domain"
	"bloodalert/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeNotificationsWS serves the admin push channel. The token comes from
// the query string or the Authorization header; only admins may join the admin room.
func UpgradeNotificationsWS(cfg *config.JWTConfig, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearer(c.GetHeader("Authorization"))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token required"})
			return
		}
		sess, err := auth.SessionFromToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid or expired token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := NewClient(sess.UserID, sess.Role)
		hub.Register(client)
		defer client.Close()

		go writePump(client, conn)
		readPump(conn, func(f models.Frame) {
			switch f.Event {
			case domain.ChannelJoinAdmin:
				if !sess.IsAdmin() {
					client.trySend(errorFrame("admin access required"))
					return
				}
				hub.JoinRoom(client, domain.RoomAdmin)
				log.Printf("[WS] user %s joined admin room", sess.UserID)
			}
		})
	}
}

func bearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func errorFrame(msg string) []byte {
	data, _ := json.Marshal(gin.H{"error": msg})
	b, _ := json.Marshal(models.Frame{Event: "error", Data: data, Timestamp: time.Now()})
	return b
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes inbound frames until the peer goes away. Undecodable
// messages are ignored.
func readPump(conn *websocket.Conn, handle func(models.Frame)) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var f models.Frame
		if json.Unmarshal(data, &f) != nil {
			continue
		}
		handle(f)
	}
}
