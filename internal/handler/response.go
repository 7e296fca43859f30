package handler

// Response helpers: every handler sends JSON through writeJSON and maps
// domain errors to HTTP statuses through writeError, so all endpoints share
// one error shape:
//
//	{"error": "not_found", "message": "user not found with id 3"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
)

// userView is the API shape of a user record. The persisted model.User keeps
// its legacy "password" key for the stored document; that field is a bcrypt
// hash and must never cross the wire, so every handler serializes this view
// instead.
type userView struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   model.Role   `json:"role"`
	Status model.Status `json:"status"`
	Joined time.Time    `json:"joined"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
		Joined: u.Joined,
	}
}

func newUserViews(users []model.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be set before the body is written — once Encode starts
// writing, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and sends
// it. The service layer returns apperror sentinels; this is the only place
// they meet HTTP status codes.
//
// errors.Is walks the wrapped chain, so a service error like
//
//	fmt.Errorf("service/reset: %w", apperror.ResetInvalid())
//
// still matches its sentinel here.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrResetInvalid):
			status = http.StatusBadRequest
			errorType = "invalid_or_expired_token"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusUnauthorized
			errorType = "invalid_credentials"
		case errors.Is(err, apperror.ErrAccountInactive):
			status = http.StatusForbidden
			errorType = "account_inactive"
		case errors.Is(err, apperror.ErrSelfModification):
			status = http.StatusForbidden
			errorType = "self_modification"
		case errors.Is(err, apperror.ErrFeatureDisabled):
			status = http.StatusForbidden
			errorType = "feature_disabled"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUnknownAccount):
			status = http.StatusNotFound
			errorType = "unknown_account"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — generic 500. The raw message might contain queries or
	// paths, so it is never exposed to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}
