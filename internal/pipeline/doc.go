// Package pipeline orchestrates asset derivation for GIF sources. A
// run always attempts the thumbnail first, then gates the video stage
// on the cached transcoding capability. Every step is idempotent, so a
// run over an already-processed source performs no new work.
//
// The orchestrator also owns deletion: removing a source cleans up its
// derived files and records while leaving the original GIF alone.
package pipeline
