package probe

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gif-player/internal/mediatypes"
	"gif-player/internal/store"
)

const fixturePath = "/fixtures/sample.gif"

// fakeConverter simulates the transcode runner during probes.
type fakeConverter struct {
	mu           sync.Mutex
	version      string
	versionErr   error
	outputs      map[mediatypes.VariantKind][]byte // nil entry writes nothing
	fs           *store.Memory
	convertCalls int
}

func (f *fakeConverter) Version(ctx context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return f.version, nil
}

func (f *fakeConverter) Convert(ctx context.Context, src, dst string, kind mediatypes.VariantKind) error {
	f.mu.Lock()
	f.convertCalls++
	out, ok := f.outputs[kind]
	f.mu.Unlock()
	if !ok || out == nil {
		return errors.New("simulated conversion failure")
	}
	return f.fs.WriteFile(dst, out)
}

func (f *fakeConverter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.convertCalls
}

// memSettings is an in-memory SettingsStore.
type memSettings struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{data: make(map[string]string)}
}

func (m *memSettings) GetSetting(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memSettings) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memSettings) DeleteSetting(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func goodVersion() string {
	return "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers"
}

func setupFixture(t *testing.T, fs *store.Memory) {
	t.Helper()
	if err := fs.WriteFile(fixturePath, []byte("GIF89a-fixture")); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
}

func TestProbeBinaryMissing(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{versionErr: errors.New("exec: \"ffmpeg\": executable file not found in $PATH"), fs: fs}
	p := New(conv, fs, newMemSettings(), fixturePath)

	capability, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if capability.Available {
		t.Error("Expected unavailable")
	}
	if capability.Reason != ReasonBinaryMissing {
		t.Errorf("Expected binary_missing, got %s", capability.Reason)
	}
	if !capability.Reason.ConfigurationError() {
		t.Error("binary_missing should classify as a configuration error")
	}
	if conv.calls() != 0 {
		t.Errorf("Expected no conversions, got %d", conv.calls())
	}
}

func TestProbeBinaryUnrecognized(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{version: "avconv 12.3 something else", fs: fs}
	p := New(conv, fs, newMemSettings(), fixturePath)

	capability, _ := p.Probe(context.Background())
	if capability.Available {
		t.Error("Expected unavailable")
	}
	if capability.Reason != ReasonBinaryUnrecognized {
		t.Errorf("Expected binary_unrecognized, got %s", capability.Reason)
	}
	if capability.Reason.ConfigurationError() {
		t.Error("binary_unrecognized is a capability error, not configuration")
	}
}

func TestProbeFixtureMissing(t *testing.T) {
	fs := store.NewMemory() // no fixture written
	conv := &fakeConverter{version: goodVersion(), fs: fs}
	p := New(conv, fs, newMemSettings(), fixturePath)

	capability, _ := p.Probe(context.Background())
	if capability.Reason != ReasonFixtureMissing {
		t.Errorf("Expected fixture_missing, got %s", capability.Reason)
	}
	if conv.calls() != 0 {
		t.Errorf("Expected no conversions without fixture, got %d", conv.calls())
	}
}

func TestProbeConversionFailed(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	// Conversions run but produce zero-byte outputs: silent failure.
	conv := &fakeConverter{
		version: goodVersion(),
		outputs: map[mediatypes.VariantKind][]byte{
			mediatypes.KindWebM: {},
			mediatypes.KindMP4:  {},
		},
		fs: fs,
	}
	p := New(conv, fs, newMemSettings(), fixturePath)

	capability, _ := p.Probe(context.Background())
	if capability.Available {
		t.Error("Expected unavailable for zero-byte outputs")
	}
	if capability.Reason != ReasonConversionFailed {
		t.Errorf("Expected conversion_failed, got %s", capability.Reason)
	}
}

func TestProbeSuccessAndCleanup(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{
		version: goodVersion(),
		outputs: map[mediatypes.VariantKind][]byte{
			mediatypes.KindWebM: []byte("webm"),
			mediatypes.KindMP4:  []byte("mp4"),
		},
		fs: fs,
	}
	settings := newMemSettings()
	p := New(conv, fs, settings, fixturePath)

	capability, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !capability.Available {
		t.Fatalf("Expected available, reason=%s", capability.Reason)
	}
	if !capability.Working[mediatypes.KindWebM] || !capability.Working[mediatypes.KindMP4] {
		t.Errorf("Expected both variants working, got %v", capability.Working)
	}

	// No probe artifacts persist.
	if fs.Exists("/fixtures/sample.webm") || fs.Exists("/fixtures/sample.mp4") {
		t.Error("Expected fixture outputs removed after probe")
	}

	// Verdict persisted.
	if _, ok, _ := settings.GetSetting(context.Background(), settingCapability); !ok {
		t.Error("Expected verdict persisted in settings")
	}
}

func TestProbePartialVariantSuccess(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{
		version: goodVersion(),
		outputs: map[mediatypes.VariantKind][]byte{
			mediatypes.KindWebM: []byte("webm"),
			// mp4 conversion fails outright
		},
		fs: fs,
	}
	p := New(conv, fs, newMemSettings(), fixturePath)

	capability, _ := p.Probe(context.Background())
	if !capability.Available {
		t.Fatal("Expected available when one variant works")
	}
	if !capability.Working[mediatypes.KindWebM] {
		t.Error("Expected webm working")
	}
	if capability.Working[mediatypes.KindMP4] {
		t.Error("Expected mp4 not working")
	}
}

// A cached available verdict must short-circuit: the expensive
// conversion never runs again.
func TestProbeCachedVerdictShortCircuits(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{
		version: goodVersion(),
		outputs: map[mediatypes.VariantKind][]byte{
			mediatypes.KindWebM: []byte("webm"),
			mediatypes.KindMP4:  []byte("mp4"),
		},
		fs: fs,
	}
	settings := newMemSettings()
	p := New(conv, fs, settings, fixturePath)

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatalf("First probe failed: %v", err)
	}
	firstCalls := conv.calls()

	capability, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Second probe failed: %v", err)
	}
	if !capability.Available {
		t.Error("Expected cached available verdict")
	}
	if conv.calls() != firstCalls {
		t.Errorf("Expected no new conversions, got %d -> %d", firstCalls, conv.calls())
	}
}

func TestProbeResetForcesReprobe(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{
		version: goodVersion(),
		outputs: map[mediatypes.VariantKind][]byte{
			mediatypes.KindWebM: []byte("webm"),
			mediatypes.KindMP4:  []byte("mp4"),
		},
		fs: fs,
	}
	settings := newMemSettings()
	p := New(conv, fs, settings, fixturePath)

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	callsAfterFirst := conv.calls()

	if err := p.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Re-probe failed: %v", err)
	}
	if conv.calls() <= callsAfterFirst {
		t.Error("Expected conversions to run again after reset")
	}
}

// An unavailable verdict is not cached: a later probe retries, so
// installing ffmpeg without restarting the service can be picked up via
// the capability test endpoint.
func TestProbeUnavailableNotPersisted(t *testing.T) {
	fs := store.NewMemory()
	setupFixture(t, fs)
	conv := &fakeConverter{versionErr: errors.New("not found"), fs: fs}
	settings := newMemSettings()
	p := New(conv, fs, settings, fixturePath)

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if _, ok, _ := settings.GetSetting(context.Background(), settingCapability); ok {
		t.Error("Unavailable verdict must not be persisted")
	}
}

func TestReasonMessages(t *testing.T) {
	reasons := []Reason{ReasonBinaryMissing, ReasonBinaryUnrecognized, ReasonFixtureMissing, ReasonConversionFailed}
	for _, r := range reasons {
		if r.Message() == "" {
			t.Errorf("Expected message for %s", r)
		}
	}
}
