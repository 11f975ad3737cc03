package http

import (
	"log/slog"
	"net/http"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/validator"
)

// AuthHandler handles sign-up, sign-in and password recovery.
type AuthHandler struct {
	errorWriter
	auth *service.AuthService
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(auth *service.AuthService, sessions *service.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		auth:        auth,
	}
}

// LoginResponse is the signed-in user and the page to go to next.
type LoginResponse struct {
	User       *domain.User `json:"user"`
	RedirectTo string       `json:"redirectTo"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.auth.Register(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"redirectTo": "/login"},
	})
}

// Login handles POST /api/v1/auth/login?returnTo=
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req service.LoginInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.Login(r.Context(), sess, req)
	if err != nil {
		// Wrong credentials come back as 401; that is not an expired session.
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	next := r.URL.Query().Get("returnTo")
	if !isLocalPath(next) {
		next = "/"
	}
	httputil.WriteData(w, LoginResponse{User: user, RedirectTo: next})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), sess); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, map[string]string{"redirectTo": "/"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Profile(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, user)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ForgotPasswordInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: map[string]string{"status": "reset email sent"},
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, map[string]string{"redirectTo": "/login"})
}
