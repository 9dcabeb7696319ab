package handlers

import (
	"net/http"
	"strconv"

	"gif-player/internal/logging"
)

const maxReprocessWorkers = 16

// Reprocess re-runs the pipeline for every recorded source. The
// optional workers query parameter caps pool size.
func (h *Handlers) Reprocess(w http.ResponseWriter, r *http.Request) {
	limit := maxReprocessWorkers
	if raw := r.URL.Query().Get("workers"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSONError(w, "workers must be a positive integer", http.StatusBadRequest)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	summary, err := h.pipe.ReprocessAll(r.Context(), limit)
	if err != nil {
		logging.Error("Reprocess failed: %v", err)
		writeJSONError(w, "reprocess failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, summary)
}
