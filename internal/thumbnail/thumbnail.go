package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"gif-player/internal/logging"
	"gif-player/internal/metrics"
	"gif-player/internal/resolve"
	"gif-player/internal/store"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 80

// DecodeError marks a source GIF that could not be read or decoded.
// The pipeline treats this as terminal for the source: no derived asset
// is registered and rendering falls back to the original GIF.
type DecodeError struct {
	Location string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode source %s: %v", e.Location, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Extractor writes the first frame of a source GIF as a still JPEG at
// the canonical thumbnail location.
type Extractor struct {
	fs store.Store
}

// New returns an Extractor backed by the given store.
func New(fs store.Store) *Extractor {
	return &Extractor{fs: fs}
}

// Extract produces the thumbnail for a source GIF. It is idempotent by
// construction: when the resolved thumbnail location already exists it
// returns that location without re-deriving. The second return reports
// whether a new file was written.
func (e *Extractor) Extract(sourceLocation string) (string, bool, error) {
	location, err := resolve.ThumbnailLocation(sourceLocation)
	if err != nil {
		return "", false, err
	}

	if e.fs.Exists(location) {
		logging.Debug("Thumbnail already exists at %s", location)
		return location, false, nil
	}

	data, err := e.fs.ReadFile(sourceLocation)
	if err != nil {
		return "", false, &DecodeError{Location: sourceLocation, Err: err}
	}

	encoded, err := e.firstFrameJPEG(data)
	if err != nil {
		return "", false, &DecodeError{Location: sourceLocation, Err: err}
	}

	if err := e.fs.WriteFile(location, encoded); err != nil {
		return "", false, fmt.Errorf("failed to write thumbnail %s: %w", location, err)
	}

	logging.Info("Thumbnail created at %s", location)
	metrics.ThumbnailsCreatedTotal.Inc()
	return location, true, nil
}

// firstFrameJPEG decodes the first frame and encodes it as JPEG at full
// size. The libvips path is used when initialized (it shrinks memory use
// on large GIFs); the pure-Go decode is the fallback.
func (e *Extractor) firstFrameJPEG(data []byte) ([]byte, error) {
	if IsVipsAvailable() {
		encoded, err := firstFrameJPEGWithVips(data, jpegQuality)
		if err == nil {
			return encoded, nil
		}
		logging.Debug("vips decode failed, falling back to pure-Go decode: %v", err)
	}

	// image.Decode returns the first frame for animated GIFs. The extra
	// registered decoders cover sources mislabeled as GIF.
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	logging.Debug("Decoded source as %s", format)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
