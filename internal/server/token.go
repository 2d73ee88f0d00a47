package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/services"
)

// TokenErrorMessage is the body of every failed token response.
const TokenErrorMessage = "failed to fetch access token"

// TokenHandler serves GET /api/token by performing the confidential credential exchange
// on behalf of the client.
type TokenHandler struct {
	provider services.TokenProvider
	logger   *log.Logger
}

// NewTokenHandler creates a handler backed by provider.
func NewTokenHandler(provider services.TokenProvider, logger *log.Logger) *TokenHandler {
	return &TokenHandler{provider: provider, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{"/api/token"}
}

// ServeHTTP responds 200 {accessToken} on success. On failure it responds with [TokenErrorMessage]
// and the upstream 4xx/5xx status, or 500 when no upstream response exists. The upstream detail is only logged.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token, err := h.provider.FetchAccessToken(r.Context())
	if err != nil {
		status := http.StatusInternalServerError

		var authErr *services.AuthError
		if errors.As(err, &authErr) && authErr.StatusCode >= 400 && authErr.StatusCode < 600 {
			status = authErr.StatusCode
		}

		h.logger.Error("token exchange failed", "status", status, "error", err)
		writeError(w, status, TokenErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, services.TokenResponse{AccessToken: token})
}

// NewTokenRouter assembles the token service: recovery, request logging and rate limiting
// in front of /api/token and /healthz.
func NewTokenRouter(provider services.TokenProvider, logger *log.Logger, limit float64, burst int) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), RateLimit(limit, burst))
	router.Handler(NewTokenHandler(provider, logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return router
}
