package mediatypes

// MIMEGIF is the only source media type the derivation pipeline acts on.
// Anything else is a silent no-op for every operation.
const MIMEGIF = "image/gif"

// VariantKind identifies a derived artifact produced from a source GIF.
type VariantKind string

const (
	// KindThumbnail is the still JPEG extracted from the first GIF frame.
	KindThumbnail VariantKind = "thumbnail"
	// KindWebM is the VP9/WebM video variant.
	KindWebM VariantKind = "video:webm"
	// KindMP4 is the H.264/MP4 video variant.
	KindMP4 VariantKind = "video:mp4"
)

// VideoKinds returns the video variant kinds in preferred source order.
// WebM is listed first so the presentation layer emits it before MP4.
func VideoKinds() []VariantKind {
	return []VariantKind{KindWebM, KindMP4}
}

// AllKinds returns every variant kind, thumbnail included.
func AllKinds() []VariantKind {
	return []VariantKind{KindThumbnail, KindWebM, KindMP4}
}

// Valid reports whether k is a known variant kind.
func (k VariantKind) Valid() bool {
	switch k {
	case KindThumbnail, KindWebM, KindMP4:
		return true
	}
	return false
}

// ContentType returns the MIME type of the artifact this kind produces.
func (k VariantKind) ContentType() string {
	switch k {
	case KindThumbnail:
		return "image/jpeg"
	case KindWebM:
		return "video/webm"
	case KindMP4:
		return "video/mp4"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for this kind, dot included.
func (k VariantKind) Extension() string {
	switch k {
	case KindThumbnail:
		return ".jpeg"
	case KindWebM:
		return ".webm"
	case KindMP4:
		return ".mp4"
	}
	return ""
}

// Strategy is the configured rendering approach for GIF players.
type Strategy string

const (
	// StrategyGIF renders the original GIF with a plain <img> swap.
	StrategyGIF Strategy = "gif"
	// StrategyCanvas renders via canvas-driven frame animation.
	StrategyCanvas Strategy = "canvas"
	// StrategyVideo renders a pre-transcoded <video> element.
	StrategyVideo Strategy = "video"
)

// Valid reports whether s is a configurable strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyGIF, StrategyCanvas, StrategyVideo:
		return true
	}
	return false
}

// IsGIF reports whether the declared media type is the GIF MIME type.
func IsGIF(mimeType string) bool {
	return mimeType == MIMEGIF
}

// SniffGIF reports whether data starts with a GIF87a/GIF89a signature.
func SniffGIF(data []byte) bool {
	if len(data) < 6 {
		return false
	}
	if data[0] != 'G' || data[1] != 'I' || data[2] != 'F' || data[3] != '8' {
		return false
	}
	return (data[4] == '7' || data[4] == '9') && data[5] == 'a'
}
