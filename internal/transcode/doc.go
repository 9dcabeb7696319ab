// Package transcode runs the external transcoder to produce video
// variants from source GIFs.
//
// It supports:
//   - Per-variant invocation parameters (VP9/webm, H.264/mp4)
//   - Idempotent runs: an existing output is never re-transcoded
//   - Output validation by existence and nonzero size (exit status is
//     not trusted)
//   - Partial-output cleanup on failure
//   - A bounded per-invocation timeout with a TimedOut classification
//
// Transcoding requires ffmpeg to be installed; availability is decided
// by the probe package, and the cached verdict gates each run.
package transcode
