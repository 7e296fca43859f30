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

// defaultActivityLimit is how many entries the dashboard shows by default.
const defaultActivityLimit = 10

// StatsHandler exposes the dashboard numbers, the recent-activity feed, and
// the usage-recording endpoint the feature UIs call after a successful
// operation.
type StatsHandler struct {
	stats     *service.StatsService
	features  *service.FeatureService
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewStatsHandler(
	stats *service.StatsService,
	features *service.FeatureService,
	directory *service.DirectoryService,
	logger *slog.Logger,
) *StatsHandler {
	return &StatsHandler{
		stats:     stats,
		features:  features,
		directory: directory,
		logger:    logger,
	}
}

// HandleStats returns the usage counters with the derived total-user count.
//
// HTTP: GET /api/admin/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleActivity returns the most recent activity entries, newest first.
//
// HTTP: GET /api/admin/activity?n=10
func (h *StatsHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	n := defaultActivityLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, apperror.ValidationFailed("n", "n must be a positive integer"))
			return
		}
		n = parsed
	}

	entries, err := h.stats.RecentActivity(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRecordUsage records one successful use of a feature.
//
// HTTP: POST /api/usage/{feature}
// Auth: optional — anonymous usage counts, but only a logged-in user's
// action lands in the activity feed.
//
// A feature an admin has switched off is rejected: the gate the feature UIs
// are supposed to consult is enforced here as well.
func (h *StatsHandler) HandleRecordUsage(w http.ResponseWriter, r *http.Request) {
	feature, ok := model.ParseFeature(chi.URLParam(r, "feature"))
	if !ok {
		writeError(w, apperror.ValidationFailed("feature", "unknown feature"))
		return
	}

	enabled, err := h.features.IsEnabled(r.Context(), feature)
	if err != nil {
		writeError(w, err)
		return
	}
	if !enabled {
		writeError(w, apperror.FeatureDisabled(string(feature)))
		return
	}

	actor := actingUser(r, h.directory)
	stats, err := h.stats.RecordUsage(r.Context(), actor, feature)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
