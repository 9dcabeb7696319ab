package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gif-player/internal/database"
	"gif-player/internal/mediatypes"
	"gif-player/internal/pipeline"
	"gif-player/internal/player"
	"gif-player/internal/probe"

	"github.com/gorilla/mux"
)

type fakePipeline struct {
	result       pipeline.Result
	err          error
	lastSource   pipeline.Source
	deleteCount  int64
	summary      pipeline.ReprocessSummary
	lastWorkers  int
	processCalls int
}

func (f *fakePipeline) Process(ctx context.Context, src pipeline.Source) (pipeline.Result, error) {
	f.processCalls++
	f.lastSource = src
	return f.result, f.err
}

func (f *fakePipeline) DeleteSource(ctx context.Context, sourceID string) (int64, error) {
	return f.deleteCount, f.err
}

func (f *fakePipeline) ReprocessAll(ctx context.Context, limit int) (pipeline.ReprocessSummary, error) {
	f.lastWorkers = limit
	return f.summary, f.err
}

type fakeCapability struct {
	cached     *probe.Capability
	capability probe.Capability
	probeCalls int
	resetCalls int
}

func (f *fakeCapability) Probe(ctx context.Context) (probe.Capability, error) {
	f.probeCalls++
	return f.capability, nil
}

func (f *fakeCapability) Cached(ctx context.Context) (*probe.Capability, error) {
	return f.cached, nil
}

func (f *fakeCapability) Reset(ctx context.Context) error {
	f.resetCalls++
	f.cached = nil
	return nil
}

type fakePlayer struct {
	decision player.Decision
	err      error
}

func (f *fakePlayer) Decide(ctx context.Context, sourceID string) (player.Decision, error) {
	return f.decision, f.err
}

func (f *fakePlayer) Render(ctx context.Context, sourceID string) (template.HTML, error) {
	if f.err != nil {
		return "", f.err
	}
	return player.RenderDecision(f.decision)
}

type env struct {
	db     *database.Database
	pipe   *fakePipeline
	caps   *fakeCapability
	player *fakePlayer
	router *mux.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := &env{
		db:     db,
		pipe:   &fakePipeline{},
		caps:   &fakeCapability{},
		player: &fakePlayer{},
		router: mux.NewRouter(),
	}
	New(db, e.pipe, e.caps, e.player).RegisterRoutes(e.router)
	return e
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestProcessSource(t *testing.T) {
	e := newEnv(t)
	e.pipe.result = pipeline.Result{RunID: "run-1", State: pipeline.StateDone, Strategy: mediatypes.StrategyGIF}

	rec := e.do(t, http.MethodPost, "/api/v1/sources/att-1/process",
		`{"location":"media/photo.gif","mimeType":"image/gif","strategy":"gif"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.RunID != "run-1" || result.State != pipeline.StateDone {
		t.Errorf("Unexpected result %+v", result)
	}
	if e.pipe.lastSource.ID != "att-1" || e.pipe.lastSource.Location != "media/photo.gif" {
		t.Errorf("Unexpected source passed to pipeline: %+v", e.pipe.lastSource)
	}
}

func TestProcessSourceValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Invalid JSON", `{not json`},
		{"Missing location", `{"mimeType":"image/gif"}`},
		{"Unknown strategy", `{"location":"a.gif","mimeType":"image/gif","strategy":"hologram"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := e.do(t, http.MethodPost, "/api/v1/sources/att-1/process", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
			if e.pipe.processCalls != 0 {
				t.Errorf("Expected pipeline not invoked, got %d calls", e.pipe.processCalls)
			}
		})
	}
}

func TestDeleteSource(t *testing.T) {
	e := newEnv(t)
	e.pipe.deleteCount = 3

	rec := e.do(t, http.MethodDelete, "/api/v1/sources/att-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["removed"] != 3 {
		t.Errorf("Expected 3 removed, got %d", resp["removed"])
	}
}

func TestListAssetsUnknownSource(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/sources/nope/assets", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestListAssets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if err := e.db.UpsertSource(ctx, database.SourceRecord{
		ID: "att-1", Location: "media/photo.gif", MimeType: mediatypes.MIMEGIF, Strategy: mediatypes.StrategyVideo,
	}); err != nil {
		t.Fatalf("UpsertSource failed: %v", err)
	}
	if _, err := e.db.Register(ctx, "att-1", mediatypes.KindThumbnail, "media/photo_gif_thumbnail.jpeg", "image/jpeg"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rec := e.do(t, http.MethodGet, "/api/v1/sources/att-1/assets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		Source database.SourceRecord   `json:"source"`
		Assets []database.DerivedAsset `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Source.ID != "att-1" || len(resp.Assets) != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestGetPlayer(t *testing.T) {
	e := newEnv(t)
	e.player.decision = player.Decision{
		Mode:      player.ModeCanvas,
		Source:    "media/photo.gif",
		Thumbnail: "media/photo_gif_thumbnail.jpeg",
	}

	rec := e.do(t, http.MethodGet, "/api/v1/sources/att-1/player", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp PlayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Decision.Mode != player.ModeCanvas {
		t.Errorf("Expected canvas mode, got %s", resp.Decision.Mode)
	}
	if !strings.Contains(resp.HTML, "gif-player-canvas") {
		t.Errorf("Expected canvas markup, got %s", resp.HTML)
	}
}

func TestGetPlayerUnknownSource(t *testing.T) {
	e := newEnv(t)
	e.player.err = fmt.Errorf("%w: nope", player.ErrUnknownSource)

	rec := e.do(t, http.MethodGet, "/api/v1/sources/nope/player", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestGetCapabilityCached(t *testing.T) {
	e := newEnv(t)
	e.caps.cached = &probe.Capability{Available: true}

	rec := e.do(t, http.MethodGet, "/api/v1/capability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if e.caps.probeCalls != 0 {
		t.Errorf("Expected no probe when cached, got %d", e.caps.probeCalls)
	}
}

func TestGetCapabilityProbesWhenUncached(t *testing.T) {
	e := newEnv(t)
	e.caps.capability = probe.Capability{Available: false, Reason: probe.ReasonBinaryMissing}

	rec := e.do(t, http.MethodGet, "/api/v1/capability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if e.caps.probeCalls != 1 {
		t.Errorf("Expected 1 probe, got %d", e.caps.probeCalls)
	}
	var capability probe.Capability
	if err := json.Unmarshal(rec.Body.Bytes(), &capability); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if capability.Available || capability.Reason != probe.ReasonBinaryMissing {
		t.Errorf("Unexpected capability %+v", capability)
	}
}

func TestTestCapabilityResetsThenProbes(t *testing.T) {
	e := newEnv(t)
	e.caps.cached = &probe.Capability{Available: false}
	e.caps.capability = probe.Capability{Available: true}

	rec := e.do(t, http.MethodPost, "/api/v1/capability/test", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if e.caps.resetCalls != 1 || e.caps.probeCalls != 1 {
		t.Errorf("Expected reset then probe, got reset=%d probe=%d", e.caps.resetCalls, e.caps.probeCalls)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var settings SettingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if settings.DefaultStrategy != mediatypes.StrategyGIF {
		t.Errorf("Expected default gif, got %s", settings.DefaultStrategy)
	}

	rec = e.do(t, http.MethodPut, "/api/v1/settings", `{"defaultStrategy":"video"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if settings.DefaultStrategy != mediatypes.StrategyVideo {
		t.Errorf("Expected video after update, got %s", settings.DefaultStrategy)
	}
}

func TestPutSettingsInvalidStrategy(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPut, "/api/v1/settings", `{"defaultStrategy":"hologram"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestReprocess(t *testing.T) {
	e := newEnv(t)
	e.pipe.summary = pipeline.ReprocessSummary{Total: 5, Succeeded: 5}

	rec := e.do(t, http.MethodPost, "/api/v1/reprocess?workers=4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if e.pipe.lastWorkers != 4 {
		t.Errorf("Expected workers=4 passed through, got %d", e.pipe.lastWorkers)
	}

	rec = e.do(t, http.MethodPost, "/api/v1/reprocess?workers=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad workers, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		rec := e.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 from %s, got %d", path, rec.Code)
		}
	}

	rec := e.do(t, http.MethodGet, "/api/v1/version", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from version, got %d", rec.Code)
	}
	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode version: %v", err)
	}
	if info["version"] == "" {
		t.Error("Expected version field")
	}
}
