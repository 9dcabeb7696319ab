// Package player resolves how a processed GIF should be presented and
// renders the matching HTML wrapper. The configured strategy is a
// preference, not a promise: the renderer degrades to whatever the
// registered assets can actually support.
package player
