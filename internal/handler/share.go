package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/service"
)

// ShareHandler mints and resolves shareable links.
type ShareHandler struct {
	share     *service.ShareService
	stats     *service.StatsService
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewShareHandler(
	share *service.ShareService,
	stats *service.StatsService,
	directory *service.DirectoryService,
	logger *slog.Logger,
) *ShareHandler {
	return &ShareHandler{
		share:     share,
		stats:     stats,
		directory: directory,
		logger:    logger,
	}
}

type mintShareRequest struct {
	Name string `json:"name"`
}

// HandleMint creates a new share link and records the usage.
//
// HTTP: POST /api/share
// Auth: optional
func (h *ShareHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req mintShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := actingUser(r, h.directory)
	link, err := h.share.Mint(r.Context(), actor, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	// A minted link is a successful use of the share feature.
	if _, err := h.stats.RecordUsage(r.Context(), actor, model.FeatureShare); err != nil {
		h.logger.Error("share: recording usage failed", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleResolve looks up a link by slug. Expired and unknown slugs are both
// 404 — an expired link is gone.
//
// HTTP: GET /s/{slug}
func (h *ShareHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	link, err := h.share.Resolve(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}
