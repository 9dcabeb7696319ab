// Package mediatypes provides shared type definitions for the GIF
// derivation pipeline.
//
// This package exists as a dependency-free foundation that other packages
// can import without creating cycles. It contains the variant kind enum,
// rendering strategy enum, MIME constants, and GIF signature sniffing.
//
// # Variant Kinds
//
// Every derived artifact is identified by a VariantKind:
//
//	mediatypes.KindThumbnail // still JPEG from the first frame
//	mediatypes.KindWebM      // VP9 video variant
//	mediatypes.KindMP4       // H.264 video variant
//
// Each kind knows its own content type and file extension:
//
//	kind.ContentType() // e.g. "video/webm"
//	kind.Extension()   // e.g. ".webm"
//
// # Strategies
//
// Strategy enumerates the rendering approaches a GIF player can use:
// plain GIF swap, canvas animation, or transcoded video playback.
package mediatypes
