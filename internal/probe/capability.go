package probe

import (
	"time"

	"gif-player/internal/mediatypes"
)

// Reason is the structured explanation attached to an unavailable
// capability verdict.
type Reason string

const (
	// ReasonBinaryMissing means the transcoder executable cannot be
	// invoked at all.
	ReasonBinaryMissing Reason = "binary_missing"
	// ReasonBinaryUnrecognized means the binary ran but its identity
	// line did not match the expected program name/version shape.
	ReasonBinaryUnrecognized Reason = "binary_unrecognized"
	// ReasonFixtureMissing means the bundled self-test GIF is absent,
	// an operational misconfiguration distinct from a codec problem.
	ReasonFixtureMissing Reason = "fixture_missing"
	// ReasonConversionFailed means no variant produced a valid nonzero
	// output during the self-test.
	ReasonConversionFailed Reason = "conversion_failed"
)

// ConfigurationError reports whether the reason is an environment setup
// problem rather than a transcoder defect. Both surface to the
// administrator as actionable messages; neither is fatal to the other
// rendering strategies.
func (r Reason) ConfigurationError() bool {
	return r == ReasonBinaryMissing || r == ReasonFixtureMissing
}

// Message returns an administrator-facing description of the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonBinaryMissing:
		return "the transcoder binary (ffmpeg) is not installed or not on PATH"
	case ReasonBinaryUnrecognized:
		return "the transcoder binary did not identify itself as ffmpeg"
	case ReasonFixtureMissing:
		return "the bundled probe fixture GIF is missing; check the service installation"
	case ReasonConversionFailed:
		return "the transcoder could not convert the probe fixture into any video variant"
	}
	return ""
}

// Capability is the cached verdict on whether video transcoding is
// usable in the current environment.
type Capability struct {
	Available bool                            `json:"available"`
	Reason    Reason                          `json:"reason,omitempty"`
	Detail    string                          `json:"detail,omitempty"`
	Version   string                          `json:"version,omitempty"`
	Working   map[mediatypes.VariantKind]bool `json:"working,omitempty"`
	CheckedAt time.Time                       `json:"checkedAt"`
}

func (c Capability) metricReason() string {
	if c.Available {
		return "ok"
	}
	return string(c.Reason)
}
