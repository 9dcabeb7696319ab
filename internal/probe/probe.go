package probe

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"golang.org/x/sync/singleflight"

	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
	"gif-player/internal/metrics"
	"gif-player/internal/resolve"
	"gif-player/internal/store"
)

// settingCapability is the settings key holding the persisted verdict.
const settingCapability = "transcode_capability"

// versionPattern matches the transcoder's self-reported identity line,
// program name followed by a version token.
var versionPattern = regexp.MustCompile(`^ffmpeg version [\w.+:~-]+`)

// Converter is the slice of the transcode runner the prober needs.
type Converter interface {
	Version(ctx context.Context) (string, error)
	Convert(ctx context.Context, src, dst string, kind mediatypes.VariantKind) error
}

// SettingsStore persists the capability verdict between runs.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Prober determines whether the external transcoder is present,
// recognized, and actually able to convert a GIF into each configured
// video variant. Probing runs a real conversion, so a successful verdict
// is cached and trusted until explicitly reset.
type Prober struct {
	conv     Converter
	fs       store.Store
	settings SettingsStore
	fixture  string
	group    singleflight.Group
}

// New returns a Prober. fixturePath names the bundled test GIF used for
// the self-test conversion.
func New(conv Converter, fs store.Store, settings SettingsStore, fixturePath string) *Prober {
	return &Prober{
		conv:     conv,
		fs:       fs,
		settings: settings,
		fixture:  fixturePath,
	}
}

// Probe returns the transcode capability verdict. A cached available
// verdict short-circuits without re-running the expensive conversion;
// concurrent first probes share one run via singleflight.
func (p *Prober) Probe(ctx context.Context) (Capability, error) {
	if cached, err := p.Cached(ctx); err != nil {
		return Capability{}, err
	} else if cached != nil && cached.Available {
		return *cached, nil
	}

	v, err, _ := p.group.Do("transcode-probe", func() (interface{}, error) {
		capability := p.run(ctx)
		metrics.ProbeRunsTotal.WithLabelValues(capability.metricReason()).Inc()

		if capability.Available {
			if storeErr := p.persist(ctx, capability); storeErr != nil {
				logging.Warn("Failed to persist capability verdict: %v", storeErr)
			}
		}
		return capability, nil
	})
	if err != nil {
		return Capability{}, err
	}
	return v.(Capability), nil
}

// Cached returns the persisted verdict without probing, or nil when no
// verdict has been stored.
func (p *Prober) Cached(ctx context.Context) (*Capability, error) {
	value, ok, err := p.settings.GetSetting(ctx, settingCapability)
	if err != nil || !ok {
		return nil, err
	}

	var capability Capability
	if err := json.Unmarshal([]byte(value), &capability); err != nil {
		logging.Warn("Discarding unreadable capability verdict: %v", err)
		return nil, nil
	}
	return &capability, nil
}

// Reset drops the persisted verdict so the next Probe re-runs the full
// self-test. Invoked by the settings reset.
func (p *Prober) Reset(ctx context.Context) error {
	return p.settings.DeleteSetting(ctx, settingCapability)
}

func (p *Prober) persist(ctx context.Context, capability Capability) error {
	data, err := json.Marshal(capability)
	if err != nil {
		return err
	}
	return p.settings.SetSetting(ctx, settingCapability, string(data))
}

// run performs the actual probe: binary check, identity check, then a
// real conversion of the bundled fixture into each video variant kind.
func (p *Prober) run(ctx context.Context) Capability {
	capability := Capability{CheckedAt: time.Now()}

	version, err := p.conv.Version(ctx)
	if err != nil {
		logging.Warn("Transcoder binary not invocable: %v", err)
		capability.Reason = ReasonBinaryMissing
		capability.Detail = err.Error()
		return capability
	}

	if !versionPattern.MatchString(version) {
		logging.Warn("Transcoder identity not recognized: %q", version)
		capability.Reason = ReasonBinaryUnrecognized
		capability.Detail = version
		return capability
	}
	capability.Version = version

	if !p.fs.Exists(p.fixture) {
		logging.Warn("Probe fixture missing at %s", p.fixture)
		capability.Reason = ReasonFixtureMissing
		capability.Detail = p.fixture
		return capability
	}

	capability.Working = make(map[mediatypes.VariantKind]bool)
	anyWorking := false

	for _, kind := range mediatypes.VideoKinds() {
		working := p.testVariant(ctx, kind)
		capability.Working[kind] = working
		if working {
			anyWorking = true
		}
	}

	if !anyWorking {
		capability.Reason = ReasonConversionFailed
		return capability
	}

	capability.Available = true
	logging.Info("Transcode capability verified: %s", version)
	return capability
}

// testVariant converts the fixture into one variant kind and applies the
// nonzero-size success signal. The output is removed regardless of
// outcome so no test artifact persists.
func (p *Prober) testVariant(ctx context.Context, kind mediatypes.VariantKind) bool {
	dst, err := resolve.VariantLocation(p.fixture, kind)
	if err != nil {
		logging.Warn("Cannot resolve fixture output for %s: %v", kind, err)
		return false
	}

	defer func() {
		if removeErr := p.fs.Remove(dst); removeErr != nil {
			logging.Warn("Failed to remove probe output %s: %v", dst, removeErr)
		}
	}()

	if err := p.conv.Convert(ctx, p.fixture, dst, kind); err != nil {
		logging.Debug("Probe conversion to %s failed: %v", kind, err)
	}

	// Trust only the output: zero-byte after a conversion attempt is a
	// silent failure, not success.
	if !p.fs.Exists(dst) {
		return false
	}
	size, err := p.fs.Size(dst)
	return err == nil && size > 0
}
