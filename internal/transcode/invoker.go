package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"gif-player/internal/logging"
)

// Invoker is the external transcoder process boundary. Production code
// shells out to ffmpeg; tests substitute a fake that writes (or fails to
// write) output files directly.
type Invoker interface {
	// Version returns the binary's self-reported identity line.
	Version(ctx context.Context) (string, error)
	// Invoke runs one conversion: input file, per-variant args, output
	// file. The returned error reflects process-level failure only; the
	// caller decides success from the output file itself.
	Invoke(ctx context.Context, inputPath string, args []string, outputPath string) error
}

// FFmpeg invokes the ffmpeg binary found on PATH (or at an explicit
// location).
type FFmpeg struct {
	bin string
}

// NewFFmpeg returns an ffmpeg-backed Invoker. An empty bin means
// "ffmpeg" resolved via PATH.
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

// Version runs `ffmpeg -version` and returns the first output line,
// e.g. "ffmpeg version 6.1.1 Copyright (c) 2000-2023 ...".
func (f *FFmpeg) Version(ctx context.Context) (string, error) {
	path, err := exec.LookPath(f.bin)
	if err != nil {
		return "", fmt.Errorf("transcoder binary %q not found: %w", f.bin, err)
	}

	cmd := exec.CommandContext(ctx, path, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get transcoder version: %w", err)
	}

	lines := strings.SplitN(string(output), "\n", 2)
	return strings.TrimSpace(lines[0]), nil
}

func (f *FFmpeg) Invoke(ctx context.Context, inputPath string, args []string, outputPath string) error {
	full := make([]string, 0, len(args)+5)
	full = append(full, "-hide_banner", "-y", "-i", inputPath)
	full = append(full, args...)
	full = append(full, outputPath)

	cmd := exec.CommandContext(ctx, f.bin, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("Invoking transcoder: %s %s", f.bin, strings.Join(full, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("transcoder failed: %w - %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
