package thumbnail

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"strings"
	"testing"

	"gif-player/internal/resolve"
	"gif-player/internal/store"
)

// encodeTestGIF builds a small two-frame animated GIF with a solid red
// first frame, so frame selection can be asserted on the output.
func encodeTestGIF(t *testing.T, width, height int) []byte {
	t.Helper()

	palette := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
	}

	first := image.NewPaletted(image.Rect(0, 0, width, height), palette)
	second := image.NewPaletted(image.Rect(0, 0, width, height), palette)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			first.SetColorIndex(x, y, 0)
			second.SetColorIndex(x, y, 1)
		}
	}

	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{first, second},
		Delay: []int{10, 10},
	})
	if err != nil {
		t.Fatalf("Failed to encode test GIF: %v", err)
	}
	return buf.Bytes()
}

func TestExtractCreatesThumbnail(t *testing.T) {
	fs := store.NewMemory()
	if err := fs.WriteFile("media/photo.gif", encodeTestGIF(t, 4, 3)); err != nil {
		t.Fatalf("Failed to seed source: %v", err)
	}

	location, created, err := New(fs).Extract("media/photo.gif")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true for a fresh source")
	}
	if location != "media/photo_gif_thumbnail.jpeg" {
		t.Errorf("Expected media/photo_gif_thumbnail.jpeg, got %s", location)
	}

	data, err := fs.ReadFile(location)
	if err != nil {
		t.Fatalf("Failed to read thumbnail: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Thumbnail is not valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("Expected full-size 4x3 frame, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// First frame is solid red; JPEG blurs edges but the center holds.
	r, g, _, _ := img.At(2, 1).RGBA()
	if r < 0x8000 || g > 0x8000 {
		t.Errorf("Expected first (red) frame in thumbnail, got r=%d g=%d", r, g)
	}
}

func TestExtractIdempotent(t *testing.T) {
	fs := store.NewMemory()
	if err := fs.WriteFile("photo.gif", encodeTestGIF(t, 2, 2)); err != nil {
		t.Fatalf("Failed to seed source: %v", err)
	}

	ex := New(fs)
	first, created, err := ex.Extract("photo.gif")
	if err != nil {
		t.Fatalf("First Extract failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true on first run")
	}

	second, created, err := ex.Extract("photo.gif")
	if err != nil {
		t.Fatalf("Second Extract failed: %v", err)
	}
	if created {
		t.Error("Expected created=false on second run")
	}
	if second != first {
		t.Errorf("Expected stable location %s, got %s", first, second)
	}
	if n := fs.WriteCount(first); n != 1 {
		t.Errorf("Expected exactly 1 write to thumbnail, got %d", n)
	}
}

func TestExtractMissingSource(t *testing.T) {
	fs := store.NewMemory()

	_, _, err := New(fs).Extract("gone.gif")
	if err == nil {
		t.Fatal("Expected error for missing source")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected DecodeError, got %T: %v", err, err)
	}
}

func TestExtractCorruptSource(t *testing.T) {
	fs := store.NewMemory()
	if err := fs.WriteFile("broken.gif", []byte("GIF89a then garbage")); err != nil {
		t.Fatalf("Failed to seed source: %v", err)
	}

	_, _, err := New(fs).Extract("broken.gif")
	if err == nil {
		t.Fatal("Expected error for corrupt source")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %T: %v", err, err)
	}
	if decodeErr.Location != "broken.gif" {
		t.Errorf("Expected location broken.gif in error, got %s", decodeErr.Location)
	}
	if fs.Exists("broken_gif_thumbnail.jpeg") {
		t.Error("Expected no thumbnail written for corrupt source")
	}
}

func TestExtractNonGIFLocation(t *testing.T) {
	fs := store.NewMemory()

	_, _, err := New(fs).Extract("photo.png")
	if !errors.Is(err, resolve.ErrNotGIF) {
		t.Errorf("Expected ErrNotGIF, got %v", err)
	}
}

func TestExtractWriteFailure(t *testing.T) {
	fs := store.NewMemory()
	if err := fs.WriteFile("photo.gif", encodeTestGIF(t, 2, 2)); err != nil {
		t.Fatalf("Failed to seed source: %v", err)
	}
	fs.FailWrites["photo_gif_thumbnail.jpeg"] = true

	_, _, err := New(fs).Extract("photo.gif")
	if err == nil {
		t.Fatal("Expected error when thumbnail write fails")
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		t.Errorf("Write failure should not be a DecodeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "write thumbnail") {
		t.Errorf("Expected write failure message, got %v", err)
	}
}
