package handler

import (
	"log/slog"
	"net/http"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/service"
)

// FeaturesHandler exposes the feature toggles, the numeric limits, and the
// site-level system settings. Reads of the flag map are public — the feature
// UIs consult them as a gate before doing any work; writes are admin-only.
type FeaturesHandler struct {
	features  *service.FeatureService
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewFeaturesHandler(features *service.FeatureService, directory *service.DirectoryService, logger *slog.Logger) *FeaturesHandler {
	return &FeaturesHandler{features: features, directory: directory, logger: logger}
}

// HandleFlags returns the current flag map.
//
// HTTP: GET /api/features
func (h *FeaturesHandler) HandleFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.features.Flags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

type setFeatureRequest struct {
	Feature string `json:"feature"`
	Enabled bool   `json:"enabled"`
}

// HandleSetFlag switches one feature on or off.
//
// HTTP: PUT /api/admin/features
func (h *FeaturesHandler) HandleSetFlag(w http.ResponseWriter, r *http.Request) {
	var req setFeatureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	feature, ok := model.ParseFeature(req.Feature)
	if !ok {
		writeError(w, apperror.ValidationFailed("feature", "unknown feature "+req.Feature))
		return
	}

	actor := actingUser(r, h.directory)
	if err := h.features.SetEnabled(r.Context(), actor, feature, req.Enabled); err != nil {
		writeError(w, err)
		return
	}

	flags, err := h.features.Flags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

// HandleGetSettings returns the numeric limits.
//
// HTTP: GET /api/admin/settings
func (h *FeaturesHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.features.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// HandleSetSettings validates and saves new numeric limits.
//
// HTTP: PUT /api/admin/settings
func (h *FeaturesHandler) HandleSetSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	if err := h.features.SetSettings(r.Context(), actor, settings); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// HandleGetSystem returns the site-level settings.
//
// HTTP: GET /api/admin/system
func (h *FeaturesHandler) HandleGetSystem(w http.ResponseWriter, r *http.Request) {
	sys, err := h.features.System(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sys)
}

// HandleSetSystem saves the site-level settings.
//
// HTTP: PUT /api/admin/system
func (h *FeaturesHandler) HandleSetSystem(w http.ResponseWriter, r *http.Request) {
	var sys model.SystemSettings
	if err := decodeJSON(r, &sys); err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	if err := h.features.SetSystem(r.Context(), actor, sys); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sys)
}
