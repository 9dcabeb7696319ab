package handlers

import (
	"net/http"

	"gif-player/internal/logging"
)

// GetCapability returns the cached transcoding verdict, probing on
// first call.
func (h *Handlers) GetCapability(w http.ResponseWriter, r *http.Request) {
	cached, err := h.caps.Cached(r.Context())
	if err != nil {
		logging.Error("Failed to read cached capability: %v", err)
		writeJSONError(w, "failed to read capability", http.StatusInternalServerError)
		return
	}
	if cached != nil {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, cached)
		return
	}

	capability, err := h.caps.Probe(r.Context())
	if err != nil {
		logging.Error("Capability probe failed: %v", err)
		writeJSONError(w, "capability probe failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, capability)
}

// TestCapability discards the cached verdict and probes again. Used by
// admins after installing or upgrading the transcoder.
func (h *Handlers) TestCapability(w http.ResponseWriter, r *http.Request) {
	if err := h.caps.Reset(r.Context()); err != nil {
		logging.Error("Failed to reset capability: %v", err)
		writeJSONError(w, "failed to reset capability", http.StatusInternalServerError)
		return
	}

	capability, err := h.caps.Probe(r.Context())
	if err != nil {
		logging.Error("Capability probe failed: %v", err)
		writeJSONError(w, "capability probe failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, capability)
}
