// Package thumbnail derives still JPEG previews from animated GIF
// sources. The first frame is extracted at full size and written next
// to the source at the canonical thumbnail location, so the preview can
// always be mapped back to its origin by name alone.
package thumbnail
