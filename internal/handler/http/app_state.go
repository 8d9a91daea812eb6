package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/tune-keeper/internal/lifecycle"
	"github.com/MKhiriev/tune-keeper/internal/logger"
)

type appStateRequest struct {
	State string `json:"state"`
}

// reportAppState receives app lifecycle transitions from the host application
// and fans them out to subscribers. The sync triggered by a transition runs in
// the background; the request returns as soon as the event is delivered.
func (h *Handler) reportAppState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var request appStateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.reportAppState").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	var event lifecycle.Event
	switch request.State {
	case "background":
		event = lifecycle.EnteredBackground
	case "active":
		event = lifecycle.BecameActive
	default:
		log.Error().Str("func", "*Handler.reportAppState").Str("state", request.State).Msg("unknown app state")
		http.Error(w, "unknown app state", http.StatusBadRequest)
		return
	}

	h.events.Emit(event)

	writeJSON(w, map[string]string{"state": string(event)}, http.StatusAccepted)
}
