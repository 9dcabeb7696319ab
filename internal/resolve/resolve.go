package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"gif-player/internal/mediatypes"
)

// ThumbnailSuffix replaces the ".gif" extension when naming a thumbnail.
// The transform is reversible: swapping the suffix back recovers the
// original GIF location.
const ThumbnailSuffix = "_gif_thumbnail.jpeg"

// ErrNotGIF is returned when a source location does not end in .gif.
var ErrNotGIF = fmt.Errorf("source location does not end in .gif")

// ErrNotThumbnail is returned when a location is not a derived thumbnail.
var ErrNotThumbnail = fmt.Errorf("location is not a derived thumbnail")

// gifStem returns the location with its .gif extension removed, or an
// error when the extension is anything else. Matching is case-insensitive
// but the returned stem preserves the original casing of the rest.
func gifStem(sourceLocation string) (string, error) {
	ext := filepath.Ext(sourceLocation)
	if !strings.EqualFold(ext, ".gif") {
		return "", fmt.Errorf("%w: %q", ErrNotGIF, sourceLocation)
	}
	return sourceLocation[:len(sourceLocation)-len(ext)], nil
}

// ThumbnailLocation computes the canonical thumbnail location for a
// source GIF. Pure string transform; no I/O.
func ThumbnailLocation(sourceLocation string) (string, error) {
	stem, err := gifStem(sourceLocation)
	if err != nil {
		return "", err
	}
	return stem + ThumbnailSuffix, nil
}

// VariantLocation computes the canonical location of a derived variant.
// For video kinds the .gif extension is swapped for the variant's own;
// the thumbnail kind uses the thumbnail suffix transform.
func VariantLocation(sourceLocation string, kind mediatypes.VariantKind) (string, error) {
	if kind == mediatypes.KindThumbnail {
		return ThumbnailLocation(sourceLocation)
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unknown variant kind %q", kind)
	}
	stem, err := gifStem(sourceLocation)
	if err != nil {
		return "", err
	}
	return stem + kind.Extension(), nil
}

// SourceFromThumbnail reverses ThumbnailLocation: given a derived
// thumbnail location it recovers the original GIF location. Used by the
// presentation layer to check whether a live GIF already has its src set.
func SourceFromThumbnail(thumbnailLocation string) (string, error) {
	if !IsThumbnailLocation(thumbnailLocation) {
		return "", fmt.Errorf("%w: %q", ErrNotThumbnail, thumbnailLocation)
	}
	return strings.TrimSuffix(thumbnailLocation, ThumbnailSuffix) + ".gif", nil
}

// IsThumbnailLocation reports whether a location was produced by
// ThumbnailLocation.
func IsThumbnailLocation(location string) bool {
	return strings.HasSuffix(location, ThumbnailSuffix)
}
