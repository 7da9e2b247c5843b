package activity

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

// Handler upgrades admin dashboard connections onto the hub
type Handler struct {
	hub    *Hub
	tokens *token.Service
	up     websocket.Upgrader
}

// NewHandler creates a new activity handler. checkOrigin receives the
// configured CORS origins.
func NewHandler(hub *Hub, tokens *token.Service, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &Handler{
		hub:    hub,
		tokens: tokens,
		up: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowAll || allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// Serve handles GET /ws/admin?token=…
// Browsers cannot set headers on websocket requests, so the admin access
// token arrives as a query parameter and is validated before the upgrade.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		response.Unauthorized(w, "Token required")
		return
	}
	if _, err := h.tokens.ValidateAdminAccess(raw); err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}

	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.Register(conn)

	// Drain control frames; the feed is one-way.
	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
