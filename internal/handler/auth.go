package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/reviewhub/internal/service"
	"github.com/sakif/reviewhub/internal/validation"
)

// AuthHandler serves the signup and token-exchange endpoints. Both are
// public: this is how a client becomes authenticated in the first place.
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150,slug"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

type signupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HandleSignup handles POST /api/v1/auth/signup. Repeating the same
// (username, email) pair re-sends the code and still returns 200.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authSvc.Signup(r.Context(), req.Username, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signupResponse{Username: user.Username, Email: user.Email})
}

// HandleToken handles POST /api/v1/auth/token, exchanging a confirmation
// code for a signed access token.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.authSvc.ExchangeToken(r.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
