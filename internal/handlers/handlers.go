package handlers

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"gif-player/internal/database"
	"gif-player/internal/pipeline"
	"gif-player/internal/player"
	"gif-player/internal/probe"

	"github.com/gorilla/mux"
)

// Pipeline is the part of the orchestrator the HTTP surface drives.
type Pipeline interface {
	Process(ctx context.Context, src pipeline.Source) (pipeline.Result, error)
	DeleteSource(ctx context.Context, sourceID string) (int64, error)
	ReprocessAll(ctx context.Context, limit int) (pipeline.ReprocessSummary, error)
}

// Capability exposes the transcoding capability verdict.
type Capability interface {
	Probe(ctx context.Context) (probe.Capability, error)
	Cached(ctx context.Context) (*probe.Capability, error)
	Reset(ctx context.Context) error
}

// Player resolves and renders the presentation for processed sources.
type Player interface {
	Decide(ctx context.Context, sourceID string) (player.Decision, error)
	Render(ctx context.Context, sourceID string) (template.HTML, error)
}

type Handlers struct {
	db        *database.Database
	pipe      Pipeline
	caps      Capability
	player    Player
	startTime time.Time
}

func New(db *database.Database, pipe Pipeline, caps Capability, pl Player) *Handlers {
	return &Handlers{
		db:        db,
		pipe:      pipe,
		caps:      caps,
		player:    pl,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches the API surface to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/sources", h.ListSources).Methods(http.MethodGet)
	api.HandleFunc("/sources/{id}/process", h.ProcessSource).Methods(http.MethodPost)
	api.HandleFunc("/sources/{id}/assets", h.ListAssets).Methods(http.MethodGet)
	api.HandleFunc("/sources/{id}/player", h.GetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/sources/{id}", h.DeleteSource).Methods(http.MethodDelete)

	api.HandleFunc("/capability", h.GetCapability).Methods(http.MethodGet)
	api.HandleFunc("/capability/test", h.TestCapability).Methods(http.MethodPost)

	api.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.PutSettings).Methods(http.MethodPut)

	api.HandleFunc("/reprocess", h.Reprocess).Methods(http.MethodPost)

	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
}
