package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"pennywise/internal/auth"
	"pennywise/internal/realtime"
)

// Handler upgrades authenticated clients to a websocket and keeps the
// connection registry current for the push path.
type Handler struct {
	authManager *auth.Manager
	registry    *realtime.Registry
	upgrader    websocket.Upgrader
}

func NewHandler(authManager *auth.Manager, registry *realtime.Registry) *Handler {
	return &Handler{
		authManager: authManager,
		registry:    registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is handled by the router's CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve authenticates via the token query parameter, since browsers cannot
// set headers on websocket dials, then registers the connection until the
// peer goes away.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.authManager.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	sock := realtime.NewSocket(ws)

	h.registry.Register(userID, sock)
	slog.Info("realtime client connected", "user_id", userID)

	sock.WaitClosed()

	h.registry.Unregister(sock)
	_ = sock.Close()
	slog.Info("realtime client disconnected", "user_id", userID)
}
