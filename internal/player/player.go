package player

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gif-player/internal/database"
	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
)

// Mode is the wrapper a source renders with. It can differ from the
// source's configured strategy when required assets are missing.
type Mode string

const (
	// ModePassthrough renders the original GIF untouched; used when
	// even the thumbnail is unavailable.
	ModePassthrough Mode = "passthrough"
	// ModeGIF swaps the still thumbnail and the animated GIF on click.
	ModeGIF Mode = "gif"
	// ModeCanvas hands frame control to a canvas player, starting from
	// the still thumbnail.
	ModeCanvas Mode = "canvas"
	// ModeVideo plays looping muted video variants with the thumbnail
	// as poster.
	ModeVideo Mode = "video"
)

// VideoSource is one playable variant in preference order.
type VideoSource struct {
	Location    string `json:"location"`
	ContentType string `json:"contentType"`
}

// Decision is the resolved presentation for one source.
type Decision struct {
	Mode      Mode          `json:"mode"`
	Source    string        `json:"source"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Videos    []VideoSource `json:"videos,omitempty"`
}

// ErrUnknownSource is returned when no record exists for a source ID.
var ErrUnknownSource = fmt.Errorf("unknown source")

// Renderer decides presentation modes and renders player markup from
// registered assets.
type Renderer struct {
	db *database.Database
}

// New returns a Renderer backed by the asset registry.
func New(db *database.Database) *Renderer {
	return &Renderer{db: db}
}

// Decide resolves the presentation mode for a source. A video strategy
// degrades to canvas when no video variant exists, and any strategy
// degrades to passthrough when the thumbnail is missing.
func (r *Renderer) Decide(ctx context.Context, sourceID string) (Decision, error) {
	rec, err := r.db.GetSource(ctx, sourceID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load source %s: %w", sourceID, err)
	}
	if rec == nil {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}

	assets, err := r.db.ListForSource(ctx, sourceID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to list assets for source %s: %w", sourceID, err)
	}
	byKind := make(map[mediatypes.VariantKind]database.DerivedAsset, len(assets))
	for _, a := range assets {
		byKind[a.VariantKind] = a
	}

	decision := Decision{Source: rec.Location}

	thumb, ok := byKind[mediatypes.KindThumbnail]
	if !ok {
		logging.Debug("Source %s has no thumbnail, rendering passthrough", sourceID)
		decision.Mode = ModePassthrough
		return decision, nil
	}
	decision.Thumbnail = thumb.Location

	switch rec.Strategy {
	case mediatypes.StrategyVideo:
		// webm is listed first so capable browsers pick the smaller
		// encode; mp4 is the compatibility variant.
		for _, kind := range mediatypes.VideoKinds() {
			if a, ok := byKind[kind]; ok {
				decision.Videos = append(decision.Videos, VideoSource{
					Location:    a.Location,
					ContentType: a.ContentType,
				})
			}
		}
		if len(decision.Videos) > 0 {
			decision.Mode = ModeVideo
			return decision, nil
		}
		logging.Debug("Source %s has no video variants, degrading to canvas", sourceID)
		decision.Mode = ModeCanvas
		return decision, nil
	case mediatypes.StrategyCanvas:
		decision.Mode = ModeCanvas
		return decision, nil
	default:
		decision.Mode = ModeGIF
		return decision, nil
	}
}

// Render produces the player markup for a source according to its
// decision.
func (r *Renderer) Render(ctx context.Context, sourceID string) (template.HTML, error) {
	decision, err := r.Decide(ctx, sourceID)
	if err != nil {
		return "", err
	}
	return RenderDecision(decision)
}

// RenderDecision renders markup for an already-resolved decision.
func RenderDecision(decision Decision) (template.HTML, error) {
	var tmpl *template.Template
	switch decision.Mode {
	case ModePassthrough:
		tmpl = passthroughTemplate
	case ModeGIF:
		tmpl = gifTemplate
	case ModeCanvas:
		tmpl = canvasTemplate
	case ModeVideo:
		tmpl = videoTemplate
	default:
		return "", fmt.Errorf("unknown presentation mode %q", decision.Mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, decision); err != nil {
		return "", fmt.Errorf("failed to render %s wrapper: %w", decision.Mode, err)
	}
	return template.HTML(sb.String()), nil
}
