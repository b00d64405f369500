package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dispetcher/backend/pkg/jwt"
	"dispetcher/backend/pkg/notify"
)

const authTimeout = 5 * time.Second

// authMessage is the first frame a client must send.
type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// StreamHandler upgrades to a websocket that receives the caller's notifications.
type StreamHandler struct {
	jwtMgr   *jwt.Manager
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a StreamHandler. Browsers from origins outside
// allowOrigins are refused; an empty list accepts any origin.
func NewStreamHandler(jwtMgr *jwt.Manager, hub *notify.Hub, allowOrigins []string) *StreamHandler {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &StreamHandler{
		jwtMgr: jwtMgr,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Serve authenticates with a first {"type":"auth","token":...} frame, then
// streams notifications until the socket closes.
// GET /api/v1/ws
func (h *StreamHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}

	claims, ok := h.authenticate(conn)
	if !ok {
		_ = conn.Close()
		return
	}

	_ = h.hub.Serve(claims.UserID, conn)
}

func (h *StreamHandler) authenticate(conn *websocket.Conn) (*jwt.Claims, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		writeFrame(conn, notify.Envelope{Type: "error", Data: "auth_timeout"})
		return nil, false
	}

	var msg authMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "auth" {
		writeFrame(conn, notify.Envelope{Type: "error", Data: "invalid_auth_message"})
		return nil, false
	}

	claims, err := h.jwtMgr.ParseToken(msg.Token)
	if err != nil || claims.TokenType != "access" {
		writeFrame(conn, notify.Envelope{Type: "error", Data: "invalid_token"})
		return nil, false
	}

	_ = conn.SetReadDeadline(time.Time{})
	writeFrame(conn, notify.Envelope{Type: "authenticated"})
	return claims, true
}

func writeFrame(conn *websocket.Conn, env notify.Envelope) {
	_ = conn.SetWriteDeadline(time.Now().Add(authTimeout))
	_ = conn.WriteJSON(env)
}
