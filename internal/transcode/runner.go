package transcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gif-player/internal/logging"
	"gif-player/internal/mediatypes"
	"gif-player/internal/metrics"
	"gif-player/internal/resolve"
	"gif-player/internal/store"
)

// ErrTimedOut marks a variant run that hit the per-invocation deadline.
var ErrTimedOut = errors.New("transcoder invocation timed out")

// Status classifies the outcome of a variant run.
type Status string

const (
	// StatusCreated means a new output was produced and validated.
	StatusCreated Status = "created"
	// StatusSkipped means nothing was attempted (capability missing or
	// the output already exists).
	StatusSkipped Status = "skipped"
	// StatusFailed means the transcoder ran but produced no usable
	// output; any partial file has been removed.
	StatusFailed Status = "failed"
)

// Skip reasons for StatusSkipped results.
const (
	SkipCapabilityUnavailable = "capability_unavailable"
	SkipAlreadyExists         = "already_exists"
)

// Result describes the outcome of RunVariant for one variant kind.
type Result struct {
	Kind       mediatypes.VariantKind
	Status     Status
	Location   string
	SkipReason string
	Err        error
}

// Created reports whether this run produced a new output file.
func (r Result) Created() bool { return r.Status == StatusCreated }

// Usable reports whether an output exists at Location after the run,
// whether freshly created or already present.
func (r Result) Usable() bool {
	return r.Status == StatusCreated || (r.Status == StatusSkipped && r.SkipReason == SkipAlreadyExists)
}

// Runner invokes the external transcoder once per variant kind and
// validates outputs. Variant runs are independent: a failed mp4 never
// rolls back a successful webm.
type Runner struct {
	inv     Invoker
	fs      store.Store
	timeout time.Duration
}

// NewRunner returns a Runner. A zero timeout disables the deadline (not
// recommended; a hung binary would hang the caller).
func NewRunner(inv Invoker, fs store.Store, timeout time.Duration) *Runner {
	return &Runner{inv: inv, fs: fs, timeout: timeout}
}

// Version returns the transcoder's identity line.
func (r *Runner) Version(ctx context.Context) (string, error) {
	return r.inv.Version(ctx)
}

// Convert runs one conversion from src to dst using the variant spec for
// kind. Used directly by the capability probe (fixture conversions) and
// by RunVariant. The caller owns output validation and cleanup.
func (r *Runner) Convert(ctx context.Context, src, dst string, kind mediatypes.VariantKind) error {
	spec, err := SpecFor(kind)
	if err != nil {
		return err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	err = r.inv.Invoke(ctx, src, spec.Args, dst)
	metrics.TranscodeDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	return err
}

// RunVariant produces one video variant for a source GIF. The available
// flag is the cached capability verdict; when false the run is skipped
// and the caller decides whether that triggers fallback rendering.
//
// The transcoder's exit status is not trusted: the output must exist
// with nonzero size to count as success. Zero-byte or absent output is
// a failure and any partial file is deleted.
func (r *Runner) RunVariant(ctx context.Context, sourceLocation string, kind mediatypes.VariantKind, available bool) Result {
	result := Result{Kind: kind}

	if !available {
		result.Status = StatusSkipped
		result.SkipReason = SkipCapabilityUnavailable
		metrics.TranscodeJobsTotal.WithLabelValues(string(kind), string(StatusSkipped)).Inc()
		return result
	}

	dst, err := resolve.VariantLocation(sourceLocation, kind)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		metrics.TranscodeJobsTotal.WithLabelValues(string(kind), string(StatusFailed)).Inc()
		return result
	}
	result.Location = dst

	// Never re-transcode an existing variant.
	if r.fs.Exists(dst) {
		logging.Debug("Variant %s already exists at %s, skipping", kind, dst)
		result.Status = StatusSkipped
		result.SkipReason = SkipAlreadyExists
		metrics.TranscodeJobsTotal.WithLabelValues(string(kind), string(StatusSkipped)).Inc()
		return result
	}

	invokeErr := r.Convert(ctx, sourceLocation, dst, kind)
	timedOut := errors.Is(invokeErr, context.DeadlineExceeded)

	if !timedOut && r.validOutput(dst) {
		if invokeErr != nil {
			// Nonzero exit with a valid output; size is the signal we trust.
			logging.Warn("Transcoder exited with error but produced valid %s output: %v", kind, invokeErr)
		}
		logging.Info("Created %s variant at %s", kind, dst)
		result.Status = StatusCreated
		metrics.TranscodeJobsTotal.WithLabelValues(string(kind), string(StatusCreated)).Inc()
		return result
	}

	// Failure path: remove any partial output so no corrupt artifact
	// survives.
	if removeErr := r.fs.Remove(dst); removeErr != nil {
		logging.Warn("Failed to remove partial output %s: %v", dst, removeErr)
	}

	result.Status = StatusFailed
	switch {
	case timedOut:
		result.Err = fmt.Errorf("%w after %s for %s", ErrTimedOut, r.timeout, sourceLocation)
	case invokeErr != nil:
		result.Err = invokeErr
	default:
		result.Err = fmt.Errorf("transcoder produced empty or missing output at %s", dst)
	}
	logging.Warn("Variant %s failed for %s: %v", kind, sourceLocation, result.Err)
	metrics.TranscodeJobsTotal.WithLabelValues(string(kind), string(StatusFailed)).Inc()
	return result
}

// validOutput applies the success signal: the file exists and has
// nonzero size. The transcoder can exit 0 while writing empty output
// under codec or permission failures, so size is checked explicitly.
func (r *Runner) validOutput(path string) bool {
	if !r.fs.Exists(path) {
		return false
	}
	size, err := r.fs.Size(path)
	return err == nil && size > 0
}
