// Package startup handles configuration loading, directory
// preparation and the structured startup/shutdown logging sequence.
// Configuration comes entirely from environment variables with sane
// defaults, so the binary runs unconfigured in a container.
package startup
