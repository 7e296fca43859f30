package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/service"
)

// UsersHandler exposes the admin user-management screens: list, create,
// rename, toggle status, delete. Every route is behind RequireAuth +
// RequireAdmin; destructive confirmation prompts are the frontend's job.
type UsersHandler struct {
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewUsersHandler(directory *service.DirectoryService, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{directory: directory, logger: logger}
}

// userParam parses the {id} URL parameter.
func userParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "user id must be a positive integer")
	}
	return id, nil
}

// HandleList returns every user record.
//
// HTTP: GET /api/admin/users
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserViews(users))
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleCreate adds a new user.
//
// HTTP: POST /api/admin/users
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	user, err := h.directory.Create(r.Context(), actor, req.Name, req.Email, req.Password, model.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserView(user))
}

type renameUserRequest struct {
	Name string `json:"name"`
}

// HandleRename changes a user's display name. An empty name after trimming
// is accepted but changes nothing — a cancelled edit dialog submits an empty
// name.
//
// HTTP: PATCH /api/admin/users/{id}
func (h *UsersHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req renameUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	if err := h.directory.Rename(r.Context(), actor, id, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}

// HandleToggleStatus flips a user between active and inactive.
//
// HTTP: POST /api/admin/users/{id}/toggle
func (h *UsersHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	user, err := h.directory.ToggleStatus(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}

// HandleDelete removes a user record.
//
// HTTP: DELETE /api/admin/users/{id}
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	if err := h.directory.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
