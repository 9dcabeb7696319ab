// Package probe decides whether video transcoding is usable in the
// current environment.
//
// The probe is deliberately end-to-end: after confirming the transcoder
// binary is invocable and identifies itself, it converts a bundled
// fixture GIF into each configured video variant and trusts only the
// outputs (exists, nonzero size). Because a real conversion is
// expensive, a successful verdict is persisted through the settings
// store and subsequent probes short-circuit until an explicit reset.
package probe
