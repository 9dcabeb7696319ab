package handlers

import (
	"encoding/json"
	"net/http"

	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
)

// SettingsResponse carries the mutable runtime settings.
type SettingsResponse struct {
	DefaultStrategy mediatypes.Strategy `json:"defaultStrategy"`
}

// GetSettings returns the current settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	strategy := h.db.DefaultStrategy(r.Context(), mediatypes.StrategyGIF)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SettingsResponse{DefaultStrategy: strategy})
}

// PutSettings updates settings. Only provided fields change.
func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DefaultStrategy != "" {
		if !req.DefaultStrategy.Valid() {
			writeJSONError(w, "unknown strategy", http.StatusBadRequest)
			return
		}
		if err := h.db.SetDefaultStrategy(r.Context(), req.DefaultStrategy); err != nil {
			logging.Error("Failed to store default strategy: %v", err)
			writeJSONError(w, "failed to store settings", http.StatusInternalServerError)
			return
		}
	}

	h.GetSettings(w, r)
}
