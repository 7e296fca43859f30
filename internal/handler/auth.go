package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/service"
)

// AuthHandler manages login, logout, and the password-reset flow.
//
// RESPONSIBILITIES:
//   - HandleLogin          → verify credentials, establish the session, set the JWT cookie
//   - HandleLogout         → clear the session and the cookie
//   - HandleMe             → return the logged-in user's record
//   - HandleForgotPassword → issue a reset token and return the reset link
//   - HandleResetPassword  → validate the pair and set the new password
type AuthHandler struct {
	sessions  *service.SessionService
	directory *service.DirectoryService
	resets    *service.ResetService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	sessions *service.SessionService,
	directory *service.DirectoryService,
	resets *service.ResetService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		directory: directory,
		resets:    resets,
		tokens:    tokens,
		logger:    logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and establishes the session.
//
// HTTP: POST /auth/login
//
// On success the session JWT is set as an HttpOnly cookie. HttpOnly means
// JavaScript cannot read it, which keeps an XSS from stealing the session.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenStr, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("login: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})

	writeJSON(w, http.StatusOK, newUserView(user))
}

// HandleLogout clears the session and deletes the cookie.
//
// HTTP: POST /auth/logout
//
// POST, not GET: logout is state-changing, and GET would be vulnerable to
// CSRF and browser pre-fetching.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user's record.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.directory.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResponse struct {
	ResetLink string `json:"resetLink"`
}

// HandleForgotPassword issues a reset token for a known account and returns
// the reset link.
//
// HTTP: POST /auth/forgot-password
//
// The link embeds the email and token as query parameters; the core only
// ever validates the pair. There is no mail transport — the link is shown to
// the requester, who copies it into the reset form.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Only known accounts get a token; the lookup error is surfaced as-is so
	// the frontend can show its "Email not found in our system" message.
	if _, err := h.directory.FindByEmail(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.resets.Issue(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	link := fmt.Sprintf("/?reset=true&email=%s&token=%s",
		url.QueryEscape(req.Email), url.QueryEscape(token))

	writeJSON(w, http.StatusOK, forgotPasswordResponse{ResetLink: link})
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleResetPassword completes the reset flow.
//
// HTTP: POST /auth/reset-password
//
// Password length and confirmation checks happen here, before Consume —
// they are a caller-side concern, not the registry's.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		writeError(w, apperror.ValidationFailed("confirmPassword", "passwords do not match"))
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, apperror.ValidationFailed("newPassword", "password must be at least 6 characters"))
		return
	}

	if err := h.resets.Consume(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successfully"})
}
