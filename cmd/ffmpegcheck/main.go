// Command ffmpegcheck runs the transcoding capability probe once and
// reports the verdict. Exit code 0 means video transcoding is usable,
// 1 means it is not.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gif-player/internal/probe"
	"gif-player/internal/store"
	"gif-player/internal/transcode"
)

// memSettings keeps the verdict in memory; a one-shot check has no
// registry to persist into.
type memSettings struct {
	values map[string]string
}

func (m *memSettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memSettings) SetSetting(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memSettings) DeleteSetting(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func main() {
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	fixturePath := flag.String("fixture", "assets/fixtures/sample.gif", "path to the probe fixture GIF")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-conversion timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 3*(*timeout))
	defer cancel()

	fs := store.NewDisk()
	runner := transcode.NewRunner(transcode.NewFFmpeg(*ffmpegPath), fs, *timeout)
	prober := probe.New(runner, fs, &memSettings{values: make(map[string]string)}, *fixturePath)

	capability, err := prober.Probe(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}

	if capability.Available {
		fmt.Printf("OK: video transcoding is available (%s)\n", capability.Version)
		for kind, working := range capability.Working {
			fmt.Printf("  %s: working=%v\n", kind, working)
		}
		return
	}

	fmt.Printf("UNAVAILABLE: %s\n", capability.Reason)
	if msg := capability.Reason.Message(); msg != "" {
		fmt.Printf("  %s\n", msg)
	}
	if capability.Detail != "" {
		fmt.Printf("  detail: %s\n", capability.Detail)
	}
	os.Exit(1)
}
