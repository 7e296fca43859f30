package auth

import (
	"context"
	"net/http"

	"github.com/mediapro/studio/internal/model"
)

// SessionCookie is the name of the HttpOnly cookie carrying the session JWT.
const SessionCookie = "mediapro_session"

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type prevents other packages from reading or
// shadowing the value — only this package can mint keys of this type.
type contextKey string

const userIDKey contextKey = "userID"

// RoleResolver looks up the role of an authenticated user. The user
// directory service implements it; the middleware only needs this one
// method, so it asks for nothing more.
type RoleResolver interface {
	RoleByID(ctx context.Context, id int64) (model.Role, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// user ID in the request context. If the token is missing or invalid, it
// returns 401 Unauthorized and stops the request chain.
//
// COOKIE-BASED TOKEN STORAGE:
// The JWT lives in an HttpOnly cookie rather than localStorage or a header.
// HttpOnly means JavaScript cannot read it, which prevents XSS attacks from
// stealing the token.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present, but
// does NOT block the request when it's missing or invalid.
//
// Feature endpoints use this: anonymous visitors can still enhance or
// compress a photo, but a logged-in user's actions are attributed to them
// in the activity feed.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID > 0 {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin enforces the admin role. It must run after RequireAuth in
// the middleware chain — it reads the user ID the auth middleware stored in
// the context and rejects non-admins with 403.
func RequireAdmin(roles RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			role, err := roles.RoleByID(r.Context(), userID)
			if err != nil || role != model.RoleAdmin {
				http.Error(w, `{"error":"forbidden","message":"admin access required"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns (0, false) when the request is anonymous.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// extractUserID reads the session cookie and validates its JWT.
// Shared by RequireAuth and OptionalAuth.
func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return 0, err
	}

	return tokens.Validate(cookie.Value)
}
