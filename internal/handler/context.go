package handler

import (
	"net/http"

	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/service"
)

// actingUser resolves the authenticated request to its full user record.
// Returns nil on anonymous requests (OptionalAuth routes) and on records
// that have been deleted since the token was issued.
func actingUser(r *http.Request, directory *service.DirectoryService) *model.User {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	user, err := directory.GetByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}
