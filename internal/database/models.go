package database

import (
	"time"

	"gif-player/internal/mediatypes"
)

// DerivedAsset is a persisted record of an artifact produced from a
// source GIF. Every derived asset belongs to exactly one source.
type DerivedAsset struct {
	ID          int64                  `json:"id"`
	SourceID    string                 `json:"sourceId"`
	VariantKind mediatypes.VariantKind `json:"variantKind"`
	Location    string                 `json:"location"`
	ContentType string                 `json:"contentType"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// SourceRecord tracks a source GIF the pipeline has seen, so batch
// reprocessing and presentation queries work without the host system
// re-sending the source details.
type SourceRecord struct {
	ID        string               `json:"id"`
	Location  string               `json:"location"`
	MimeType  string               `json:"mimeType"`
	Strategy  mediatypes.Strategy  `json:"strategy,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
}
