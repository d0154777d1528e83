package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nullreceiver/srp6a/internal/api/middleware"
	"github.com/nullreceiver/srp6a/pkg/protocol"
)

// WhoAmIHandler reports the authenticated session bound to the bearer token
// presented in the Authorization header. It sits behind
// middleware.AuthMiddleware and exists so a session token can be checked
// without re-running the handshake.
type WhoAmIHandler struct{}

// NewWhoAmIHandler creates a new session-introspection handler.
func NewWhoAmIHandler() *WhoAmIHandler {
	return &WhoAmIHandler{}
}

type whoAmIResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

// ServeHTTP handles GET /auth/session - returns the calling session's
// username and expiry. middleware.AuthMiddleware has already validated the
// token and attached the session to the request context.
func (h *WhoAmIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		writeJSONError(w, http.StatusUnauthorized, protocol.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(whoAmIResponse{
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
