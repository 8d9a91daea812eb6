package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/models"
)

// syncStatusResponse is the wire shape of a status snapshot. The completion
// time is null until the first run finishes.
type syncStatusResponse struct {
	IsRunning           bool     `json:"is_running"`
	CurrentOperation    string   `json:"current_operation,omitempty"`
	LastSyncCompletedAt *string  `json:"last_sync_completed_at"`
	PendingUploads      int      `json:"pending_uploads"`
	PendingDownloads    int      `json:"pending_downloads"`
	Errors              []string `json:"errors"`
}

func newSyncStatusResponse(status models.SyncStatus) syncStatusResponse {
	response := syncStatusResponse{
		IsRunning:        status.IsRunning,
		CurrentOperation: status.CurrentOperation,
		PendingUploads:   status.PendingUploads,
		PendingDownloads: status.PendingDownloads,
		Errors:           status.Errors,
	}
	if response.Errors == nil {
		response.Errors = []string{}
	}
	if !status.LastSyncCompletedAt.IsZero() {
		completed := status.LastSyncCompletedAt.UTC().Format(time.RFC3339Nano)
		response.LastSyncCompletedAt = &completed
	}
	return response
}

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newSyncStatusResponse(h.engine.GetStatus()), http.StatusOK)
}

func (h *Handler) getSyncProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	progress, err := h.engine.GetSyncProgress(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSyncProgress").Msg("error computing sync progress")
		http.Error(w, "error computing sync progress", statusFromError(err))
		return
	}

	writeJSON(w, progress, http.StatusOK)
}

func (h *Handler) getUnsyncedCount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	kind := models.EntityKind(chi.URLParam(r, "kind"))
	count, err := h.engine.GetUnsyncedCount(r.Context(), kind)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getUnsyncedCount").Str("kind", string(kind)).Msg("error counting unsynced records")
		http.Error(w, "unknown entity kind", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{"kind": kind, "pending": count}, http.StatusOK)
}

func (h *Handler) runManualSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.engine.TriggerManualSync(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.runManualSync").Msg("manual sync failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	writeJSON(w, newSyncStatusResponse(h.engine.GetStatus()), http.StatusOK)
}

func (h *Handler) runFullResync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.engine.ForceSyncAll(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.runFullResync").Msg("full resync failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	writeJSON(w, newSyncStatusResponse(h.engine.GetStatus()), http.StatusOK)
}
