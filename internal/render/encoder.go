package render

import (
	"context"

	"clipper/internal/captions"
	"clipper/internal/clip"
	"clipper/internal/croptrack"
)

// Instructions is the complete render order for one clip: the downloaded
// media section, the crop trajectory, the styled caption cues, and the
// output target. The media file is already trimmed to the clip window, so
// every time inside is clip-local.
type Instructions struct {
	MediaPath  string
	Track      *croptrack.Track
	Cues       []captions.Cue
	Preset     clip.Preset
	Aspect     clip.Aspect
	OutputPath string
	// WorkDir receives intermediate files such as the rendered subtitle
	// document.
	WorkDir string
}

// Encoder turns render instructions into an output artifact. Implementations
// must either produce the artifact at OutputPath or return an error and
// leave no partial file behind.
type Encoder interface {
	Render(ctx context.Context, instructions Instructions) error
}
