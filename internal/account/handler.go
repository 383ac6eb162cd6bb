package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiceye/internal/platform/middleware"
	dErrors "civiceye/pkg/domain-errors"
	"civiceye/pkg/platform/httputil"
)

// TokenIssuer issues signed access tokens for authenticated principals.
type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, error)
}

// Handler exposes registration, login, and the current-principal endpoint.
type Handler struct {
	service *Service
	tokens  TokenIssuer
	logger  *slog.Logger
}

func NewHandler(service *Service, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger}
}

// Register mounts the auth routes. RequireAuth for /me is applied by the router.
func (h *Handler) Register(r chi.Router, validator middleware.JWTValidator) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
	r.With(middleware.RequireAuth(validator, h.logger)).Get("/api/auth/me", h.handleMe)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a fresh token plus the profile it belongs to.
type AuthResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	acct, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.respondWithToken(w, r.Context(), acct, http.StatusCreated)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	acct, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.respondWithToken(w, r.Context(), acct, http.StatusOK)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.Lookup(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct.Profile())
}

func (h *Handler) respondWithToken(w http.ResponseWriter, ctx context.Context, acct Account, status int) {
	token, err := h.tokens.GenerateAccessToken(acct.ID, string(acct.Role))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign access token", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}
	httputil.WriteJSON(w, status, AuthResponse{Token: token, User: acct.Profile()})
}
