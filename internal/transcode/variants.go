package transcode

import (
	"fmt"

	"gif-player/internal/mediatypes"
)

// VariantSpec holds the transcoder invocation parameters for one video
// variant kind. The table is static configuration, not runtime state.
type VariantSpec struct {
	Kind mediatypes.VariantKind
	Args []string
}

// variantSpecs follows the GIF-to-video settings recommended for
// replacing animated GIFs: VP9 at CRF 41 for webm, H.264 at CRF 25 with
// yuv420p for mp4. The mp4 pad filter rounds dimensions up to even
// values, which libx264 requires with this pixel format.
var variantSpecs = map[mediatypes.VariantKind]VariantSpec{
	mediatypes.KindWebM: {
		Kind: mediatypes.KindWebM,
		Args: []string{"-c:v", "libvpx-vp9", "-b:v", "0", "-crf", "41", "-f", "webm"},
	},
	mediatypes.KindMP4: {
		Kind: mediatypes.KindMP4,
		Args: []string{
			"-b:v", "0", "-crf", "25", "-f", "mp4",
			"-vcodec", "libx264", "-pix_fmt", "yuv420p",
			"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		},
	},
}

// SpecFor returns the invocation parameters for a video variant kind.
func SpecFor(kind mediatypes.VariantKind) (VariantSpec, error) {
	spec, ok := variantSpecs[kind]
	if !ok {
		return VariantSpec{}, fmt.Errorf("no variant spec for kind %q", kind)
	}
	return spec, nil
}
