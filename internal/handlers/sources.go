package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
	"gif-player/internal/pipeline"
	"gif-player/internal/player"

	"github.com/gorilla/mux"
)

// ProcessRequest is the body for triggering a pipeline run.
type ProcessRequest struct {
	Location string              `json:"location"`
	MimeType string              `json:"mimeType"`
	Strategy mediatypes.Strategy `json:"strategy,omitempty"`
}

// ProcessSource runs the derivation pipeline for one source.
func (h *Handlers) ProcessSource(w http.ResponseWriter, r *http.Request) {
	sourceID := mux.Vars(r)["id"]

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Location == "" {
		writeJSONError(w, "location is required", http.StatusBadRequest)
		return
	}
	if req.Strategy != "" && !req.Strategy.Valid() {
		writeJSONError(w, "unknown strategy", http.StatusBadRequest)
		return
	}

	result, err := h.pipe.Process(r.Context(), pipeline.Source{
		ID:       sourceID,
		Location: req.Location,
		MimeType: req.MimeType,
		Strategy: req.Strategy,
	})
	if err != nil {
		logging.Error("Pipeline run failed for source %s: %v", sourceID, err)
		writeJSONError(w, "pipeline run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// DeleteSource removes a source's derived assets and records.
func (h *Handlers) DeleteSource(w http.ResponseWriter, r *http.Request) {
	sourceID := mux.Vars(r)["id"]

	removed, err := h.pipe.DeleteSource(r.Context(), sourceID)
	if err != nil {
		logging.Error("Delete failed for source %s: %v", sourceID, err)
		writeJSONError(w, "delete failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]int64{"removed": removed})
}

// ListSources returns every source the pipeline has recorded.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.db.ListSources(r.Context())
	if err != nil {
		logging.Error("Failed to list sources: %v", err)
		writeJSONError(w, "failed to list sources", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"sources": sources, "count": len(sources)})
}

// ListAssets returns the derived assets registered for a source.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	sourceID := mux.Vars(r)["id"]

	rec, err := h.db.GetSource(r.Context(), sourceID)
	if err != nil {
		logging.Error("Failed to load source %s: %v", sourceID, err)
		writeJSONError(w, "failed to load source", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		writeJSONError(w, "source not found", http.StatusNotFound)
		return
	}

	assets, err := h.db.ListForSource(r.Context(), sourceID)
	if err != nil {
		logging.Error("Failed to list assets for source %s: %v", sourceID, err)
		writeJSONError(w, "failed to list assets", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"source": rec, "assets": assets})
}

// PlayerResponse pairs the presentation decision with rendered markup.
type PlayerResponse struct {
	Decision player.Decision `json:"decision"`
	HTML     string          `json:"html"`
}

// GetPlayer returns the resolved presentation for a source.
func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	sourceID := mux.Vars(r)["id"]

	decision, err := h.player.Decide(r.Context(), sourceID)
	if err != nil {
		if errors.Is(err, player.ErrUnknownSource) {
			writeJSONError(w, "source not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to decide presentation for source %s: %v", sourceID, err)
		writeJSONError(w, "failed to resolve presentation", http.StatusInternalServerError)
		return
	}

	markup, err := player.RenderDecision(decision)
	if err != nil {
		logging.Error("Failed to render presentation for source %s: %v", sourceID, err)
		writeJSONError(w, "failed to render presentation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, PlayerResponse{Decision: decision, HTML: string(markup)})
}
