package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/heartfelt/internal/auth"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"go.uber.org/zap"
)

// WSHandler upgrades authenticated connections onto the live feed.
type WSHandler struct {
	hub       *realtime.Hub
	jwtSecret string
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewWSHandler allows upgrades from the listed origins, from same-host pages
// and from non-browser clients that send no Origin. "*" allows any origin.
func NewWSHandler(hub *realtime.Hub, jwtSecret string, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// Serve handles GET /v1/ws?token=<jwt>. Browsers cannot set headers on a
// WebSocket handshake, so the token rides in the query string.
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := auth.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	middleware.SetIdentity(c, claims)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	h.logger.Debug("websocket connected", zap.String("user_id", claims.UserID.String()))
	h.hub.Serve(conn, claims.UserID)
}
