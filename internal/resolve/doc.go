// Package resolve computes canonical derived-asset locations from a
// source GIF location.
//
// All functions are pure string transforms with no filesystem access, so
// callers can compute target identities before deciding whether any work
// is needed. The thumbnail transform is reversible; see
// SourceFromThumbnail.
package resolve
