package pipeline

import (
	"context"
	"fmt"
	"time"

	"gif-player/internal/database"
	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
	"gif-player/internal/metrics"
	"gif-player/internal/probe"
	"gif-player/internal/store"
	"gif-player/internal/transcode"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// State describes how far a pipeline run got for a source.
type State string

const (
	StateNotStarted       State = "not_started"
	StateThumbnailPending State = "thumbnail_pending"
	StateThumbnailReady   State = "thumbnail_ready"
	StateVideoPending     State = "video_pending"
	StateVideoReady       State = "video_ready"
	StateVideoFallback    State = "video_fallback"
	StateDone             State = "done"
)

// Source identifies one GIF the host system wants processed. Strategy
// is optional; when empty the stored default applies.
type Source struct {
	ID       string              `json:"id"`
	Location string              `json:"location"`
	MimeType string              `json:"mimeType"`
	Strategy mediatypes.Strategy `json:"strategy,omitempty"`
}

// Result reports the outcome of one pipeline run.
type Result struct {
	RunID    string                  `json:"runId"`
	State    State                   `json:"state"`
	Strategy mediatypes.Strategy     `json:"strategy"`
	Assets   []database.DerivedAsset `json:"assets"`
	NoOp     bool                    `json:"noOp,omitempty"`
}

// Extractor derives the still thumbnail for a source GIF.
type Extractor interface {
	Extract(sourceLocation string) (string, bool, error)
}

// VariantRunner performs one idempotent transcode attempt per variant.
type VariantRunner interface {
	RunVariant(ctx context.Context, sourceLocation string, kind mediatypes.VariantKind, available bool) transcode.Result
}

// CapabilityProber gates the video stage on environment support.
type CapabilityProber interface {
	Probe(ctx context.Context) (probe.Capability, error)
}

// Orchestrator runs the derivation pipeline for sources and owns the
// lifecycle of their derived assets.
type Orchestrator struct {
	db        *database.Database
	fs        store.Store
	extractor Extractor
	runner    VariantRunner
	prober    CapabilityProber

	// group serializes concurrent runs for the same source so two
	// requests never derive the same assets twice.
	group singleflight.Group
}

// New wires an Orchestrator from its collaborators.
func New(db *database.Database, fs store.Store, extractor Extractor, runner VariantRunner, prober CapabilityProber) *Orchestrator {
	return &Orchestrator{
		db:        db,
		fs:        fs,
		extractor: extractor,
		runner:    runner,
		prober:    prober,
	}
}

// Process runs the full pipeline for one source. Concurrent calls for
// the same source ID share a single run and receive its result.
func (o *Orchestrator) Process(ctx context.Context, src Source) (Result, error) {
	v, err, _ := o.group.Do(src.ID, func() (interface{}, error) {
		return o.process(ctx, src)
	})
	res, ok := v.(Result)
	if !ok {
		res = Result{State: StateNotStarted}
	}
	return res, err
}

func (o *Orchestrator) process(ctx context.Context, src Source) (Result, error) {
	start := time.Now()
	res := Result{
		RunID: uuid.NewString(),
		State: StateNotStarted,
	}

	// Non-GIF sources are not an error, just not our problem. No
	// component is invoked and nothing is recorded.
	if !mediatypes.IsGIF(src.MimeType) {
		res.State = StateDone
		res.NoOp = true
		o.finish(res, start)
		return res, nil
	}

	res.Strategy = src.Strategy
	if !res.Strategy.Valid() {
		res.Strategy = o.db.DefaultStrategy(ctx, mediatypes.StrategyGIF)
	}

	if err := o.db.UpsertSource(ctx, database.SourceRecord{
		ID:       src.ID,
		Location: src.Location,
		MimeType: src.MimeType,
		Strategy: res.Strategy,
	}); err != nil {
		o.finish(res, start)
		return res, fmt.Errorf("failed to record source %s: %w", src.ID, err)
	}

	res.State = StateThumbnailPending
	thumbLocation, created, err := o.extractor.Extract(src.Location)
	if err != nil {
		// Without a thumbnail no wrapper can render; the source keeps
		// playing as a plain GIF on the host side.
		logging.Warn("Thumbnail extraction failed for source %s: %v", src.ID, err)
		res.Strategy = mediatypes.StrategyGIF
		o.finish(res, start)
		return res, err
	}
	if created {
		logging.Info("Run %s: thumbnail created for source %s", res.RunID, src.ID)
	}

	asset, err := o.db.Register(ctx, src.ID, mediatypes.KindThumbnail, thumbLocation, mediatypes.KindThumbnail.ContentType())
	if err != nil {
		o.finish(res, start)
		return res, fmt.Errorf("failed to register thumbnail for source %s: %w", src.ID, err)
	}
	res.Assets = append(res.Assets, *asset)
	res.State = StateThumbnailReady

	if res.Strategy != mediatypes.StrategyVideo {
		res.State = StateDone
		o.finish(res, start)
		return res, nil
	}

	res.State = StateVideoPending
	capability, err := o.prober.Probe(ctx)
	if err != nil {
		logging.Warn("Capability probe failed for source %s: %v", src.ID, err)
	}
	if !capability.Available {
		// The runner is never invoked when the environment cannot
		// transcode; the renderer falls back to the canvas wrapper.
		logging.Info("Run %s: transcoding unavailable (%s), source %s falls back", res.RunID, capability.Reason, src.ID)
		res.State = StateVideoFallback
		o.finish(res, start)
		return res, nil
	}

	anyUsable := false
	for _, kind := range mediatypes.VideoKinds() {
		variant := o.runner.RunVariant(ctx, src.Location, kind, capability.Working[kind])
		if variant.Err != nil {
			logging.Warn("Run %s: %s variant failed for source %s: %v", res.RunID, kind, src.ID, variant.Err)
		}
		if !variant.Usable() {
			continue
		}
		anyUsable = true
		asset, err := o.db.Register(ctx, src.ID, kind, variant.Location, kind.ContentType())
		if err != nil {
			o.finish(res, start)
			return res, fmt.Errorf("failed to register %s for source %s: %w", kind, src.ID, err)
		}
		res.Assets = append(res.Assets, *asset)
	}

	if anyUsable {
		res.State = StateVideoReady
	} else {
		res.State = StateVideoFallback
	}
	o.finish(res, start)
	return res, nil
}

func (o *Orchestrator) finish(res Result, start time.Time) {
	metrics.PipelineRunsTotal.WithLabelValues(string(res.State)).Inc()
	metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
}

// DeleteSource removes every derived asset file for a source and then
// its records. Missing files are tolerated so a partially cleaned
// source can be deleted again. Source GIFs themselves are never
// touched. Returns how many asset records were removed.
func (o *Orchestrator) DeleteSource(ctx context.Context, sourceID string) (int64, error) {
	assets, err := o.db.ListForSource(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to list assets for source %s: %w", sourceID, err)
	}

	for _, asset := range assets {
		if err := o.fs.Remove(asset.Location); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", asset.Location, err)
		}
		logging.Debug("Removed derived asset %s", asset.Location)
	}

	removed, err := o.db.DeleteRecordsForSource(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete asset records for source %s: %w", sourceID, err)
	}
	if err := o.db.DeleteSource(ctx, sourceID); err != nil {
		return removed, fmt.Errorf("failed to delete source %s: %w", sourceID, err)
	}

	logging.Info("Deleted source %s and %d derived assets", sourceID, removed)
	return removed, nil
}
